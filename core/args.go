package core

import (
	"fmt"
	"strconv"

	"github.com/guateandrew/edis/message"
)

// argBytes returns Args[i], or an error if the command wasn't given enough
// arguments.
func argBytes(cmd *message.Command, i int) ([]byte, error) {
	if i >= len(cmd.Args) {
		return nil, fmt.Errorf("%s: missing argument %d", cmd.Cmd, i)
	}
	return cmd.Args[i], nil
}

func argString(cmd *message.Command, i int) (string, error) {
	b, err := argBytes(cmd, i)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func argInt(cmd *message.Command, i int) (int, error) {
	s, err := argString(cmd, i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d is not an integer: %q", cmd.Cmd, i, s)
	}
	return n, nil
}

func argFloat(cmd *message.Command, i int) (float64, error) {
	s, err := argString(cmd, i)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d is not a float: %q", cmd.Cmd, i, s)
	}
	return f, nil
}

// argVariadicBytes returns every argument from i onward.
func argVariadicBytes(cmd *message.Command, i int) ([][]byte, error) {
	if i > len(cmd.Args) {
		return nil, fmt.Errorf("%s: missing arguments from %d", cmd.Cmd, i)
	}
	return cmd.Args[i:], nil
}

func argc(cmd *message.Command) int {
	return len(cmd.Args)
}
