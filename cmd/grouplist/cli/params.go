// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagsFromParams returns a [pflag.FlagSet] bound to the tagged fields
// of params, which must point to a struct. Panics on a malformed params
// type; that is a programming error.
//
//	var params addParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet {
//	        return cli.FlagsFromParams("add", &params)
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers one flag per tagged field of params.
//
// # Struct tags
//
//   - flag:"name" or flag:"name,n": long name and optional shorthand.
//     Untagged fields are skipped.
//   - desc:"help text"
//   - default:"value": parsed per the field type; zero when absent.
//   - env:"VAR": a non-empty VAR replaces the default. The flag still
//     wins when given.
//
// Fields may be string, bool, int64 or [time.Duration]. Fields of
// embedded structs are bound as if declared on params.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(value.Elem(), flagSet)
}

// flagTags is the parsed tag set of one field.
type flagTags struct {
	name        string
	shorthand   string
	description string
	fallback    string
}

func tagsOf(field reflect.StructField) (flagTags, bool) {
	tag, ok := field.Tag.Lookup("flag")
	if !ok || tag == "" {
		return flagTags{}, false
	}
	tags := flagTags{
		description: field.Tag.Get("desc"),
		fallback:    field.Tag.Get("default"),
	}
	tags.name, tags.shorthand, _ = strings.Cut(tag, ",")
	if variable := field.Tag.Get("env"); variable != "" {
		if fromEnv := os.Getenv(variable); fromEnv != "" {
			tags.fallback = fromEnv
		}
	}
	return tags, true
}

// bindStruct binds every visible field, including those promoted from
// embedded structs. Shadowed fields are not visible and stay unbound.
func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	for _, field := range reflect.VisibleFields(structValue.Type()) {
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			continue
		}
		tags, ok := tagsOf(field)
		if !ok {
			continue
		}
		fieldValue := structValue.FieldByIndex(field.Index)
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}
		if err := bind(fieldValue.Addr().Interface(), flagSet, tags); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

// initial parses the fallback for one field; empty yields the zero
// value.
func initial[T any](tags flagTags, parse func(string) (T, error)) (T, error) {
	var zero T
	if tags.fallback == "" {
		return zero, nil
	}
	parsed, err := parse(tags.fallback)
	if err != nil {
		return zero, fmt.Errorf("default for --%s: %w", tags.name, err)
	}
	return parsed, nil
}

func bind(target any, flagSet *pflag.FlagSet, tags flagTags) error {
	var err error
	switch target := target.(type) {
	case *string:
		flagSet.StringVarP(target, tags.name, tags.shorthand, tags.fallback, tags.description)
	case *bool:
		var value bool
		if value, err = initial(tags, strconv.ParseBool); err == nil {
			flagSet.BoolVarP(target, tags.name, tags.shorthand, value, tags.description)
		}
	case *int64:
		var value int64
		if value, err = initial(tags, parseInt64); err == nil {
			flagSet.Int64VarP(target, tags.name, tags.shorthand, value, tags.description)
		}
	case *time.Duration:
		var value time.Duration
		if value, err = initial(tags, time.ParseDuration); err == nil {
			flagSet.DurationVarP(target, tags.name, tags.shorthand, value, tags.description)
		}
	default:
		return fmt.Errorf("unsupported type %T for flag --%s", target, tags.name)
	}
	return err
}

func parseInt64(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
