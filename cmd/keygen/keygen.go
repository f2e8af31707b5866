// Command keygen writes the table of key names accepted by hotkeytimer.
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/dave/jennifer/jen"
)

var (
	out = flag.String("o", "keys_gen.go", "file to write")
	pkg = flag.String("pkg", "keys", "package name of the generated file")
)

// named are the non-character keys shared by robotgo's key tap and gohook's keycode map.
var named = []string{
	"backspace", "delete", "enter", "tab", "esc", "space",
	"up", "down", "left", "right", "home", "end", "pageup", "pagedown", "insert",
	"capslock", "printscreen",
	"shift", "ctrl", "alt", "cmd", "lshift", "rshift", "lctrl", "rctrl", "lalt", "ralt",
	"num_lock", "num.", "num+", "num-", "num*", "num/", "num_enter",
	"-", "=", "[", "]", "\\", ";", "'", ",", ".", "/", "`",
}

func keyNames() []string {
	names := slices.Clone(named)
	for c := 'a'; c <= 'z'; c++ {
		names = append(names, string(c))
	}
	for d := 0; d <= 9; d++ {
		names = append(names, strconv.Itoa(d), "num"+strconv.Itoa(d))
	}
	for f := 1; f <= 24; f++ {
		names = append(names, "f"+strconv.Itoa(f))
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func main() {
	flag.Parse()

	f := jen.NewFile(*pkg)
	f.HeaderComment("Code generated by keygen. DO NOT EDIT.")
	f.Comment("names lists every key name the hotkey and input backends accept, sorted.")
	f.Var().Id("names").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, name := range keyNames() {
			g.Line().Lit(name)
		}
		g.Line()
	})

	if err := f.Save(*out); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
}
