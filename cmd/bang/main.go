// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command bang is a small shell around the rewriter: each line is parsed,
// rewritten into its capability-dispatch form, printed, and evaluated
// against the session environment.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/arraykit/bang/fmterr"
	"github.com/arraykit/bang/interp"
	"github.com/arraykit/bang/parse"
	"github.com/arraykit/bang/rewrite"
	"github.com/arraykit/bang/value"

	// Register the sparse matrix-multiply specialization.
	_ "github.com/arraykit/bang/sparse"
)

const (
	historyFile = ".bang_history"
	prompt      = "bang> "
)

var expr = flag.String("e", "", "rewrite a single statement and exit")

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *expr != "" {
		out, err := rewriteLine("arg", *expr)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(out.String())
		return 0
	}
	return repl()
}

func rewriteLine(name, line string) (rewritten fmt.Stringer, err error) {
	src := fmterr.NewSource(name, line)
	stmt, err := parse.Statement(src)
	if err != nil {
		return nil, err
	}
	return rewrite.RewriteOpts(rewrite.Options{Source: src}, stmt)
}

func repl() int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	env := interp.NewEnv()
	fmt.Println("bang rewriter. :help lists commands, Ctrl+D exits.")
	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			fmt.Println()
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if strings.HasPrefix(line, ":") {
			if quit := command(env, line); quit {
				return 0
			}
			continue
		}
		src := fmterr.NewSource("repl", line)
		stmt, err := parse.Statement(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		out, err := rewrite.RewriteOpts(rewrite.Options{Source: src}, stmt)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Println("→", out.String())
		v, err := interp.Eval(env, out)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if v != nil {
			fmt.Println(v.String())
		}
	}
}

func command(env *interp.Env, line string) (quit bool) {
	fields := strings.SplitN(line, " ", 2)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Print(`commands:
  :let name = dense(...)|fixed(...)  bind an array
  :shape <stmt>                      classify a statement
  :env                               list bindings
  :quit                              exit
`)
	case ":env":
		for _, name := range env.Names() {
			v, _ := env.Lookup(name)
			fmt.Printf("%s = %s\n", name, v.String())
		}
	case ":shape":
		if len(fields) < 2 {
			fmt.Fprintln(os.Stderr, "usage: :shape <stmt>")
			return false
		}
		stmt, err := parse.Statement(fmterr.NewSource("repl", fields[1]))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return false
		}
		fmt.Println(rewrite.Classify(stmt))
	case ":let":
		if len(fields) < 2 {
			fmt.Fprintln(os.Stderr, "usage: :let name = dense(...)|fixed(...)")
			return false
		}
		if err := bind(env, fields[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %s\n", fields[0])
	}
	return false
}

// bind parses "name = dense(1, 2)" or "name = fixed(1, 2)" and installs the
// binding.
func bind(env *interp.Env, def string) error {
	name, ctor, ok := strings.Cut(def, "=")
	if !ok {
		return fmt.Errorf("expected name = dense(...)|fixed(...)")
	}
	name = strings.TrimSpace(name)
	ctor = strings.TrimSpace(ctor)
	open := strings.IndexByte(ctor, '(')
	if open < 0 || !strings.HasSuffix(ctor, ")") {
		return fmt.Errorf("expected dense(...) or fixed(...), got %q", ctor)
	}
	kind := ctor[:open]
	var vs []float64
	for _, field := range strings.Split(ctor[open+1:len(ctor)-1], ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("malformed element %q", field)
		}
		vs = append(vs, v)
	}
	switch kind {
	case "dense":
		env.Bind(name, value.Vector(vs...))
	case "fixed":
		env.Bind(name, value.FixedVector(vs...))
	default:
		return fmt.Errorf("unknown constructor %q", kind)
	}
	return nil
}
