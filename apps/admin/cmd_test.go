package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/subject"
	inmemdb "github.com/trezcool/deptportal/storage/database/inmem"
	testutil "github.com/trezcool/deptportal/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	out := new(bytes.Buffer)
	cli := &commandLine{
		conf:     testutil.NewConfig(),
		out:      out,
		subjects: subject.NewService(inmemdb.NewSubjectRepository(inmemdb.Open())),
	}
	t.Cleanup(func() { _ = cli.close() })
	return cli, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "addsubject: no flags", args: []string{"addsubject"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	// not a postgres database yet
	assert.Equal(t, errNotPostgres, cli.run([]string{"admin", "migrate", "up"}))

	cli.conf.Database.Backend = core.BackendPostgres
	db, err := sql.Open("postgres", "postgres://localhost/deptportal?sslmode=disable") // never connects
	require.NoError(t, err)
	cli.db = db

	var gotCommand string
	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		gotCommand = command
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
			if len(tt.args) > 1 {
				assert.Equal(t, tt.args[1], gotCommand)
			}
		})
	}
}

func Test_commandLine_hashPassword(t *testing.T) {
	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no password", args: []string{"hashpassword"}, wantErr: errHelp},
		{name: "hash only", args: []string{"hashpassword"}, extra: extra{pwd: "s3cret!"}},
		{name: "admin entry", args: []string{"hashpassword", "-email", " Admin@Dept.edu "}, extra: extra{pwd: "s3cret!"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t)
			err := cli.run(args)
			tt.check(t, err)
			if err != nil {
				return
			}

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			printed := strings.TrimSpace(lines[len(lines)-1])
			if len(tt.args) == 1 {
				printed = "someone@dept.edu," + printed
			}
			admin, err := core.ParseAdmin(printed)
			require.NoError(t, err)
			assert.NoError(t, admin.CheckPassword("s3cret!"))
			if len(tt.args) > 1 {
				assert.Equal(t, "admin@dept.edu", admin.Email)
			}
		})
	}
}

func Test_commandLine_addSubjects(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "addsubject", "-name", "Algebra"}))
	require.NoError(t, cli.run([]string{"admin", "addsubject", "-defaults"}))
	require.NoError(t, cli.run([]string{"admin", "addsubject", "-defaults"}))
	assert.Contains(t, out.String(), fmt.Sprintf("0 subject(s) added, %d already existed", len(core.DefaultSubjects)))

	subjects, err := cli.subjects.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, len(core.DefaultSubjects)+1)

	t.Run("memory backend", func(t *testing.T) {
		cli := &commandLine{conf: testutil.NewConfig(), out: new(bytes.Buffer)}
		assert.Equal(t, errMemoryBackend, cli.run([]string{"admin", "addsubject", "-defaults"}))
	})
}
