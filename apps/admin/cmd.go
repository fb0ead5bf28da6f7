package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/subject"
	"github.com/trezcool/deptportal/storage/stores"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp          = errors.New("help provided")
	errNotPostgres   = errors.New("migrations only apply to the postgres backend")
	errMemoryBackend = errors.New("the memory backend does not outlive this command")
)

type commandLine struct {
	conf *core.Config
	out  io.Writer

	// opened on first use
	db       *sql.DB
	st       *stores.Stores
	subjects *subject.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]           - run a goose command (up, down, status, ...) on the postgres database")
	fmt.Fprintln(cli.out, "  hashpassword [-email EMAIL]      - hash a password for an ADMIN_n variable")
	fmt.Fprintln(cli.out, "  addsubject -name NAME|-defaults  - add a subject, or the default ones")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	hashPasswordCmd := flag.NewFlagSet("hashpassword", flag.ExitOnError)
	hashPasswordEmail := hashPasswordCmd.String("email", "", "The admin's email, to print the whole ADMIN_n value. The password will be prompted next.")

	addSubjectCmd := flag.NewFlagSet("addsubject", flag.ExitOnError)
	addSubjectName := addSubjectCmd.String("name", "", "The subject's name.")
	addSubjectDefaults := addSubjectCmd.Bool("defaults", false, "Add the default subjects.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "hashpassword":
		if err := hashPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			hashPasswordCmd.Usage()
			return errHelp
		}
		return cli.hashPassword(*hashPasswordEmail, string(pwd))

	case "addsubject":
		if err := addSubjectCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addSubjectName == "" && !*addSubjectDefaults {
			addSubjectCmd.Usage()
			return errHelp
		}
		names := core.DefaultSubjects
		if !*addSubjectDefaults {
			names = []string{*addSubjectName}
		}
		return cli.addSubjects(context.Background(), names...)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) close() error {
	var err error
	if cli.st != nil {
		err = cli.st.Close(context.Background())
	}
	if cli.db != nil {
		if dbErr := cli.db.Close(); err == nil {
			err = dbErr
		}
	}
	return err
}
