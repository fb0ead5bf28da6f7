package main

import (
	"context"
	"fmt"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/subject"
	"github.com/trezcool/deptportal/storage/stores"
)

func (cli *commandLine) addSubjects(ctx context.Context, names ...string) error {
	if cli.subjects == nil {
		if cli.conf.Database.Backend == core.BackendMemory || cli.conf.Database.Backend == "" {
			return errMemoryBackend
		}
		st, err := stores.Open(ctx, cli.conf)
		if err != nil {
			return err
		}
		cli.st = st
		cli.subjects = subject.NewService(st.Subjects)
	}

	created, err := cli.subjects.Seed(ctx, names...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d subject(s) added, %d already existed\n", created, len(names)-created)
	return nil
}
