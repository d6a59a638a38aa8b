package main

import (
	"fmt"
	"os"

	"jyxal/classfile"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file.class>",
		Short: "Print the members and bytecode of a class file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, err := disassemble(data)
			if err != nil {
				return errors.Wrap(err, args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func disassemble(data []byte) (string, error) {
	class, err := classfile.Parse(data)
	if err != nil {
		return "", err
	}
	return classfile.Disassemble(class)
}
