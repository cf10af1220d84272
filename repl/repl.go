// Package repl implements the Read-Eval-Print Loop for Ruchy.
//
// The REPL provides an interactive environment where users can enter
// Ruchy expressions line by line, see immediate results, navigate
// command history, and receive colored feedback for different kinds of
// output. It is a thin shell around session.Session: all language
// semantics and persistent state live there, not here.
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/paiml/ruchy-sub007/session"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl encapsulates all the configuration needed to run an interactive
// session.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	License string
	Prompt  string
}

func NewRepl(banner, version, author, line, license, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, License: license, Prompt: prompt}
}

// PrintBannerInfo displays the welcome banner and usage instructions.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version+" | Author: "+r.Author+" | License: "+r.License)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Welcome to Ruchy!")
	cyanColor.Fprintf(writer, "%s\n", "Type your code and press enter")
	cyanColor.Fprintf(writer, "%s\n", "Type '.exit' to quit, '.checkpoint'/'.restore' to snapshot state")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate command history")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start begins the REPL main loop, reusing one Session across every
// line so bindings and history persist between inputs.
func (r *Repl) Start(reader io.Reader, writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	sess := session.New()
	var checkpoint *session.Checkpoint

	for {
		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		line = strings.Trim(line, " \n\t\r")
		if line == "" {
			continue
		}
		if line == ".exit" {
			writer.Write([]byte("Good Bye!\n"))
			break
		}
		if line == ".checkpoint" {
			cp := sess.Checkpoint()
			checkpoint = &cp
			greenColor.Fprintf(writer, "checkpoint saved (%d binding(s))\n", len(cp.Bindings))
			continue
		}
		if line == ".restore" {
			if checkpoint == nil {
				redColor.Fprintf(writer, "no checkpoint saved yet\n")
				continue
			}
			sess.Restore(*checkpoint)
			greenColor.Fprintf(writer, "restored checkpoint\n")
			continue
		}

		rl.SaveHistory(line)
		r.executeWithRecovery(writer, line, sess)
	}
}

// executeWithRecovery evaluates one line against sess, recovering from
// any panic so a bad input never kills the REPL loop.
func (r *Repl) executeWithRecovery(writer io.Writer, line string, sess *session.Session) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(writer, "[RUNTIME ERROR] %v\n", recovered)
		}
	}()

	display, err := sess.Eval(line)
	if err != nil {
		redColor.Fprintf(writer, "%s\n", err.Error())
		return
	}
	yellowColor.Fprintf(writer, "%s\n", display)
}
