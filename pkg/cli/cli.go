package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

type Command = cli.Command

type Flag = cli.Flag
type IntFlag = cli.IntFlag
type StringFlag = cli.StringFlag
type BoolFlag = cli.BoolFlag

func ShowAppHelp(cmd *Command) error {
	return cli.ShowAppHelp(cmd)
}

func Fatal(v any) {
	fmt.Fprintln(os.Stderr, v)
	os.Exit(1)
}
