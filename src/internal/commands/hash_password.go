package commands

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
)

func CreateHashPasswordCommand() *HashPasswordCommand {
	return &HashPasswordCommand{
		fs:    flag.NewFlagSet("hash-password", flag.ExitOnError),
		stdin: os.Stdin,
	}
}

// HashPasswordCommand prints the two encoded password forms the router
// expects, ready to paste into the [router] section.
type HashPasswordCommand struct {
	fs    *flag.FlagSet
	ctx   *AppContext
	stdin io.Reader

	password string
}

func (c *HashPasswordCommand) Name() string {
	return c.fs.Name()
}

// Init takes the password from the first argument, or from the first line
// of stdin when no argument is given.
func (c *HashPasswordCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	if c.fs.NArg() > 0 {
		c.password = c.fs.Arg(0)
		return nil
	}

	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read password: %w", err)
	}
	c.password = strings.TrimRight(line, "\r\n")
	if c.password == "" {
		return fmt.Errorf("usage: hash-password <password> (or pass it on stdin)")
	}
	return nil
}

func (c *HashPasswordCommand) Run() error {
	hash, obfuscated := ikuai.EncodePassword(c.password)
	out := c.ctx.out()
	fmt.Fprintf(out, "password_hash = %q\n", hash)
	fmt.Fprintf(out, "password_obfuscated = %q\n", obfuscated)
	return nil
}
