// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"spirv/internal/asm"
	"spirv/internal/passes"
)

const prompt = ">> "

// Start runs the interactive assembler. Lines are accumulated into a
// translation unit that is re-parsed after every complete input, so
// mistakes are reported immediately and the module can be inspected at
// any point with the commands:
//
//	:dump   print the module
//	:opt    optimize the module, then print it
//	:clear  forget all input
//	:quit   leave
func Start() error {
	rl, err := readline.New(prompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	var lines []string
	depth := 0
	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		switch strings.TrimSpace(line) {
		case ":quit":
			return nil
		case ":clear":
			lines = nil
			depth = 0
			continue
		case ":dump":
			dump(lines, false)
			continue
		case ":opt":
			dump(lines, true)
			continue
		}

		lines = append(lines, line)
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth > 0 {
			// Inside a function definition; wait for the closing brace.
			rl.SetPrompt(".. ")
			continue
		}
		rl.SetPrompt(prompt)
		if err := parse(lines); err != nil {
			fmt.Println(err)
			lines = lines[:len(lines)-1]
		}
	}
}

func parse(lines []string) error {
	source := strings.Join(lines, "\n") + "\n"
	_, err := asm.ReadModule(strings.NewReader(source))
	return err
}

func dump(lines []string, optimize bool) {
	source := strings.Join(lines, "\n") + "\n"
	m, err := asm.ReadModule(strings.NewReader(source))
	if err != nil {
		fmt.Println(err)
		return
	}
	if optimize {
		if err := passes.Optimize(m); err != nil {
			fmt.Println(err)
			return
		}
	}
	m.Dump(os.Stdout)
}
