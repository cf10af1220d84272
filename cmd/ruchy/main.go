// Command ruchy is the interactive launcher for the Ruchy language
// core: REPL mode, single-file execution, and a TCP-served REPL for
// remote sessions. It owns no language semantics itself — every mode
// just drives a session.Session.
package main

import (
	"net"
	"os"

	"github.com/fatih/color"

	"github.com/paiml/ruchy-sub007/repl"
	"github.com/paiml/ruchy-sub007/session"
)

var (
	VERSION = "v0.1.0"
	AUTHOR  = "paiml"
	LICENSE = "MIT"
	PROMPT  = "ruchy> "
	LINE    = "----------------------------------------------------------------"
	BANNER  = `
 ____            _
|  _ \ _   _  ___| |__  _   _
| |_) | | | |/ __| '_ \| | | |
|  _ <| |_| | (__| | | | |_| |
|_| \_\\__,_|\___|_| |_|\__, |
                        |___/
`
)

var (
	redColor    = color.New(color.FgRed)
	yellowColor = color.New(color.FgYellow)
	cyanColor   = color.New(color.FgCyan)
)

func main() {
	if len(os.Args) > 1 {
		arg := os.Args[1]

		switch arg {
		case "--help", "-h":
			showHelp()
			return
		case "--version", "-v":
			showVersion()
			return
		case "server":
			if len(os.Args) < 3 {
				redColor.Fprintf(os.Stderr, "[USAGE ERROR] Missing port for server mode. Usage: ruchy server <port>\n")
				os.Exit(1)
			}
			startServer(os.Args[2])
			return
		}

		runFile(arg)
		return
	}

	repler := repl.NewRepl(BANNER, VERSION, AUTHOR, LINE, LICENSE, PROMPT)
	repler.Start(os.Stdin, os.Stdout)
}

func showHelp() {
	cyanColor.Println("Ruchy - A small, expression-oriented programming language")
	cyanColor.Println("")
	cyanColor.Println("USAGE:")
	yellowColor.Println("  ruchy                      Start interactive REPL mode")
	yellowColor.Println("  ruchy <path-to-file>       Execute a .ruchy/.rchy file")
	yellowColor.Println("  ruchy server <port>        Start REPL server on specified port")
	yellowColor.Println("  ruchy --help               Display this help message")
	yellowColor.Println("  ruchy --version            Display version information")
	cyanColor.Println("")
	cyanColor.Println("REPL COMMANDS:")
	yellowColor.Println("  .exit                      Exit the REPL")
	yellowColor.Println("  .checkpoint                Snapshot the current bindings")
	yellowColor.Println("  .restore                   Restore the last snapshot")
}

func showVersion() {
	cyanColor.Println("Ruchy - A small, expression-oriented programming language")
	cyanColor.Printf("Version: %s\n", VERSION)
	cyanColor.Printf("License: %s\n", LICENSE)
	cyanColor.Printf("Author : %s\n", AUTHOR)
}

// runFile reads a source file and evaluates it as a single program
// against a fresh session, printing the final value or the first error.
func runFile(fileName string) {
	content, err := os.ReadFile(fileName)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] Could not read file %q: %v\n", fileName, err)
		os.Exit(1)
	}

	sess := session.New()
	display, evalErr := sess.Eval(string(content))
	if evalErr != nil {
		redColor.Fprintf(os.Stderr, "%s\n", evalErr.Error())
		os.Exit(1)
	}
	yellowColor.Printf("%s\n", display)
}

// startServer listens on port and serves one REPL session per
// connection, each with its own Session instance.
func startServer(port string) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[SERVER ERROR] Failed to start server on port %s: %v\n", port, err)
		os.Exit(1)
	}
	cyanColor.Printf("Ruchy REPL server listening on :%s\n", port)
	defer listener.Close()

	for {
		conn, err := listener.Accept()
		if err != nil {
			redColor.Fprintf(os.Stderr, "[SERVER ERROR] Failed to accept connection: %v\n", err)
			continue
		}
		go handleClient(conn)
	}
}

func handleClient(conn net.Conn) {
	defer conn.Close()
	cyanColor.Printf("New client connected from %s\n", conn.RemoteAddr())
	repler := repl.NewRepl(BANNER, VERSION, AUTHOR, LINE, LICENSE, PROMPT)
	repler.Start(conn, conn)
	cyanColor.Printf("Client disconnected from %s\n", conn.RemoteAddr())
}
