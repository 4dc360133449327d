package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/keymapweb/keygen"
	"github.com/tdewolff/argp"
)

type Generate struct {
	Codes            string   `default:"keycodes_v6.py" desc:"Secondary keycode table, vial-gui's keycodes_v6.py"`
	Dict             string   `default:"kc" desc:"Dictionary in the secondary keycode table, empty reads all entries"`
	Overrides        string   `default:"custom_keys.yaml" desc:"Manual keys, codes and aliases"`
	Output           string   `short:"o" default:"pages/js/keygen.js" desc:"Output file"`
	Minify           bool     `short:"m" desc:"Minify output"`
	StrippedFallback bool     `name:"stripped-fallback" desc:"Resolve unknown descriptors by their name without underscores"`
	Verbose          bool     `short:"v" desc:"Log every descriptor lookup"`
	Files            []string `index:"*" desc:"QMK's quantum/keycodes.h and vial-gui's src/main/python/keycodes/keycodes.py"`
}

var root *argp.Argp

func main() {
	root = argp.NewCmd(&Generate{}, "Generate the keycode tables of the web configurator")
	root.Parse()
	root.PrintHelp()
}

// Run prints the usage and exits successfully unless exactly two files are given.
func (cmd *Generate) Run() error {
	if len(cmd.Files) != 2 {
		usage(os.Stdout)
		if root != nil {
			root.PrintHelp()
		}
		return nil
	}
	return cmd.generate(log.New(os.Stderr, "", 0))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "qmk's keycodes.h path needed.")
	fmt.Fprintln(w, "vial-gui's keycodes.py path needed.")
	fmt.Fprintln(w, "You probably want:")
	fmt.Fprintf(w, "%s ../vial-qmk/quantum/keycodes.h ../vial-gui/src/main/python/keycodes/keycodes.py\n\n", os.Args[0])
}

func (cmd *Generate) generate(logger *log.Logger) error {
	header, descriptors := cmd.Files[0], cmd.Files[1]

	t, err := keygen.ParseHeaderFile(header)
	if err != nil {
		return err
	}
	logger.Printf("QMK: Found %d keycodes in %s", t.Keys.Len(), header)

	descs, err := keygen.ParseDescriptorsFile(descriptors)
	if err != nil {
		return err
	}
	logger.Printf("Found %d descs in %s", descs.Keys.Len(), descriptors)
	if cmd.Verbose {
		for _, err := range descs.Skipped {
			logger.Printf("skipped %v", err)
		}
	}

	codes, err := keygen.ParseCodeTableFile(cmd.Codes, cmd.Dict)
	if err != nil {
		return err
	}
	logger.Printf("Found %d codes in %s", len(codes.Entries), cmd.Codes)

	overrides, err := keygen.LoadOverridesFile(cmd.Overrides)
	if err != nil {
		return err
	}

	logger.Printf("Okay, merge:")
	err = keygen.Merge(t, descs, codes, overrides, keygen.Options{
		StrippedFallback: cmd.StrippedFallback,
		Log:              logger,
		Verbose:          cmd.Verbose,
	})
	if err != nil {
		return err
	}
	for _, err := range t.Verify() {
		logger.Printf("WARNING: %v", err)
	}

	return keygen.WriteFile(cmd.Output, t, keygen.EmitOptions{
		Minify: cmd.Minify,
	})
}
