package main

import (
	"fmt"

	"github.com/trezcool/deptportal/core"
)

// hashPassword prints the bcrypt hash of pwd, or a whole "email,hash" admin entry when email is set.
func (cli *commandLine) hashPassword(email, pwd string) error {
	hash, err := core.HashPassword(pwd)
	if err != nil {
		return err
	}
	if email = core.CleanString(email, true /* lower */); email != "" {
		fmt.Fprintf(cli.out, "%s,%s\n", email, hash)
		return nil
	}
	fmt.Fprintln(cli.out, string(hash))
	return nil
}
