/*
Esox inspects and exercises packed grammar files produced with the esox
toolkit.

Usage:

	esox [flags] GRAMMAR_FILE

The flags are:

	-v, --version
		Give the current version of esox and then exit.

	-c, --check
		Read the grammar file, validate its format, and report a summary.
		This is the default mode.

	-d, --dump
		Print the grammar's DFA and LALR tables.

	-t, --tokenize FILE
		Tokenize the contents of FILE ("-" for stdin) with the grammar's
		tokenizer and print one token per line.

	-r, --repl
		Start an interactive session that tokenizes each entered line.

	-o, --opts FILE
		Read display options from the given TOML file.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/dekarrin/esox/automaton"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/internal/version"
	"github.com/dekarrin/esox/lex"
	"github.com/dekarrin/esox/pack"
	"github.com/dekarrin/esox/parse"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates bad arguments.
	ExitUsageError

	// ExitGrammarError indicates the grammar file could not be read.
	ExitGrammarError

	// ExitInputError indicates a problem tokenizing the input.
	ExitInputError
)

var (
	returnCode   int     = ExitSuccess
	flagVersion  *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagCheck    *bool   = pflag.BoolP("check", "c", false, "Validate the grammar file and print a summary")
	flagDump     *bool   = pflag.BoolP("dump", "d", false, "Print the grammar's DFA and LALR tables")
	tokenizeFile *string = pflag.StringP("tokenize", "t", "", "Tokenize the given file (\"-\" for stdin)")
	flagRepl     *bool   = pflag.BoolP("repl", "r", false, "Interactively tokenize entered lines")
	optsFile     *string = pflag.StringP("opts", "o", "", "Read display options from the given TOML file")
)

// displayOptions is the format of the --opts TOML file.
type displayOptions struct {
	Tokenize struct {
		// Positions includes each token's line and column.
		Positions bool `toml:"positions"`

		// MaxTokens stops after printing this many tokens; 0 is no limit.
		MaxTokens int `toml:"max-tokens"`
	} `toml:"tokenize"`
}

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just
			// because we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("esox %s\n", version.Current)
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "ERROR: need exactly one grammar file; got %d args\n", pflag.NArg())
		returnCode = ExitUsageError
		return
	}

	var opts displayOptions
	if *optsFile != "" {
		if _, err := toml.DecodeFile(*optsFile, &opts); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading options file: %s\n", err.Error())
			returnCode = ExitUsageError
			return
		}
	}

	f, err := os.Open(pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGrammarError
		return
	}
	g, err := pack.Read(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s: %s\n", pflag.Arg(0), err.Error())
		returnCode = ExitGrammarError
		return
	}

	switch {
	case *flagDump:
		fmt.Println(automaton.RenderDFA(g))
		fmt.Println()
		fmt.Println(parse.RenderTable(g))
	case *tokenizeFile != "":
		returnCode = tokenize(g, *tokenizeFile, opts)
	case *flagRepl:
		returnCode = repl(g, opts)
	case *flagCheck:
		summarize(g)
	default:
		summarize(g)
	}
}

func summarize(g *pack.Grammar) {
	fmt.Printf("grammar %q (case-sensitive: %v)\n", g.Name, g.CaseSensitive)
	if g.Source != "" {
		fmt.Printf("source: %s\n", g.Source)
	}
	fmt.Printf("%d terminals, %d noise, %d virtual, %d nonterminals\n",
		len(g.Terminals), len(g.Noise), len(g.Virtuals), len(g.Nonterminals))
	fmt.Printf("%d productions, %d groups\n", len(g.Productions), len(g.Groups))
	fmt.Printf("%d DFA states, %d LALR states\n", len(g.DFA), len(g.LALR))
	fmt.Printf("start symbol: %s\n", g.Nonterminals[g.Start])
}

func tokenize(g *pack.Grammar, file string, opts displayOptions) int {
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitInputError
	}

	if !printTokens(g, string(data), opts) {
		return ExitInputError
	}
	return ExitSuccess
}

func repl(g *pack.Grammar, opts displayOptions) int {
	rl, err := readline.New("esox> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitInputError
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			// io.EOF or interrupt; either way the session is over
			return ExitSuccess
		}
		printTokens(g, line, opts)
	}
}

func printTokens(g *pack.Grammar, input string, opts displayOptions) bool {
	rd := lex.NewStringReader(input)
	tk := lex.NewDefaultTokenizer(g, nil)
	ch := lex.NewChain(tk)
	ctx := &grammar.RunContext{}

	count := 0
	for {
		if opts.Tokenize.MaxTokens > 0 && count >= opts.Tokenize.MaxTokens {
			return true
		}

		out := ch.Next(rd, ctx)
		switch out.Kind {
		case lex.OutToken:
			if opts.Tokenize.Positions {
				fmt.Printf("%s:  %s  %q\n", out.Token.Pos, g.SymbolName(out.Token.Symbol), out.Token.Lexeme)
			} else {
				fmt.Printf("%s  %q\n", g.SymbolName(out.Token.Symbol), out.Token.Lexeme)
			}
			count++
		case lex.OutEOF:
			return true
		case lex.OutError:
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", out.Err.String())
			return false
		case lex.OutSuspend:
			return true
		}
	}
}
