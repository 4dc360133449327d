package keygen

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// UnknownAliasError is returned when a descriptor names a keycode that no alias resolves.
type UnknownAliasError struct {
	Name string
}

func (err *UnknownAliasError) Error() string {
	return fmt.Sprintf("unknown keycode %s in descriptors", err.Name)
}

// MissingKeyError is returned when an override targets a keycode that has no record.
type MissingKeyError struct {
	Name string
}

func (err *MissingKeyError) Error() string {
	return fmt.Sprintf("override for unknown keycode %s", err.Name)
}

// Options configure Merge.
type Options struct {
	// StrippedFallback resolves descriptor names that are not a known alias by comparing them with their underscores removed.
	StrippedFallback bool

	// Log receives progress and warnings, nil discards them.
	Log *log.Logger

	// Verbose logs every descriptor lookup.
	Verbose bool
}

func (o Options) logger() *log.Logger {
	if o.Log == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Log
}

// StrippedAliases maps every alias with its underscores removed to the alias target. On collisions the alias added last wins.
func StrippedAliases(aliases *Aliases) *Aliases {
	stripped := NewMap[string, string]()
	for _, alias := range aliases.Keys() {
		qmkid, _ := aliases.Get(alias)
		stripped.Set(strings.ReplaceAll(alias, "_", ""), qmkid)
	}
	return stripped
}

// Merge reconciles the tables of the header with the other sources, in order:
//
//  1. the stripped alias table is built from the header aliases,
//  2. the entries of codes either become aliases of a known code or new keycodes,
//  3. the override aliases are added,
//  4. every descriptor is resolved through the aliases and merged into its key, or added as a key without code,
//  5. the override fields are merged into their existing keys,
//  6. the override codes are written into the code table.
//
// A descriptor that does not resolve gives an *UnknownAliasError and an override for a missing key gives a *MissingKeyError. Sources may be nil.
func Merge(t *Tables, descs *Descriptors, codes *CodeTable, o *Overrides, opts Options) error {
	logger := opts.logger()

	t.Stripped = StrippedAliases(t.Aliases)

	if codes != nil {
		for _, e := range codes.Entries {
			if !t.Aliases.Has(e.Name) {
				if qmkid, ok := t.Codes.Get(e.Code); ok {
					t.Aliases.Set(e.Name, qmkid)
					continue
				}
			}
			t.Aliases.Set(e.Name, e.Name)
			t.Codes.Set(e.Code, e.Name)
			t.Keys.Set(e.Name, codeKey(e.Name, e.Code))
		}
	}

	if o == nil {
		o = NewOverrides()
	}
	for _, alias := range o.Aliases.Keys() {
		qmkid, _ := o.Aliases.Get(alias)
		t.Aliases.Set(alias, qmkid)
	}

	if descs != nil {
		for _, name := range descs.Keys.Keys() {
			desc, _ := descs.Keys.Get(name)
			if opts.Verbose {
				logger.Printf("Looking for %s", name)
			}

			qmkid, ok := t.Aliases.Get(name)
			if !ok && opts.StrippedFallback {
				qmkid, ok = t.Stripped.Get(strings.ReplaceAll(name, "_", ""))
			}
			if !ok {
				return &UnknownAliasError{name}
			}

			if k, ok := t.Keys.Get(qmkid); ok {
				k.Update(desc)
			} else {
				logger.Printf("WARNING: qmkid %s has no code", qmkid)
				t.Keys.Set(qmkid, desc.Clone())
			}
		}
	}

	for _, qmkid := range o.Keys.Keys() {
		k, ok := t.Keys.Get(qmkid)
		if !ok {
			return &MissingKeyError{qmkid}
		}
		fields, _ := o.Keys.Get(qmkid)
		k.Update(fields)
	}

	for _, qmkid := range o.Codes.Keys() {
		code, _ := o.Codes.Get(qmkid)
		t.Codes.Set(code, qmkid)
	}

	logger.Printf("Got %d keys and %d codes", t.Keys.Len(), t.Codes.Len())
	return nil
}

// Verify returns an error for every code whose identifier has no key or whose key has a different code.
func (t *Tables) Verify() []error {
	var errs []error
	for _, code := range t.Codes.Keys() {
		qmkid, _ := t.Codes.Get(code)
		k, ok := t.Keys.Get(qmkid)
		if !ok {
			errs = append(errs, fmt.Errorf("code 0x%04x maps to %s which has no key", code, qmkid))
		} else if c, ok := k.Code(); !ok {
			errs = append(errs, fmt.Errorf("code 0x%04x maps to %s which has no code", code, qmkid))
		} else if c != code {
			errs = append(errs, fmt.Errorf("code 0x%04x maps to %s which has code 0x%04x", code, qmkid, c))
		}
	}
	return errs
}
