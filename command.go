package command

import (
	"context"
	"reflect"
	"regexp"
	"strings"
)

// Command is a unit of work that mutates some external state.
type Command interface {
	Execute(ctx context.Context) error
}

// CommandFunc is an adapter that lets you use a function as a Command
type CommandFunc func(ctx context.Context) error

// Execute calls the underlying function
func (f CommandFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

func (f CommandFunc) Type() string { return "command::func" }

// Enqueuer accepts commands at the back of a queue.
type Enqueuer interface {
	PushBack(cmd Command)
}

// CommandType returns a stable name for cmd, used in logs and error metadata.
func CommandType(cmd any) string {
	if cmd == nil {
		return "unknown_type"
	}

	v := reflect.ValueOf(cmd)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return "unknown_type"
	}

	// if cmd implements Type() then we use that:
	if typer, ok := cmd.(interface{ Type() string }); ok {
		return typer.Type()
	}

	t := reflect.TypeOf(cmd)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	typeName := t.Name()
	if typeName == "" {
		typeName = t.String()
	}

	pkgPath := t.PkgPath()
	switch {
	case pkgPath == rootPkgPath:
		// the module directory name is not the package name
		pkgPath = "command"
	case pkgPath != "":
		parts := strings.Split(pkgPath, "/")
		pkgPath = parts[len(parts)-1]
	}

	name := toSnakeCase(typeName)

	if pkgPath == "" {
		return name
	}
	return pkgPath + "::" + name
}

const rootPkgPath = "github.com/goliatone/go-command-queue"

var snakeCaseRe = regexp.MustCompile("([a-z0-9])([A-Z])")

func toSnakeCase(s string) string {
	return strings.ToLower(snakeCaseRe.ReplaceAllString(s, "${1}_${2}"))
}
