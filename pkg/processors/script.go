package processors

import (
	"context"
	"io"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

const defaultScriptFunction = "transform"

// ErrScriptResult is returned when the Lua function returns something else than a string, a number or nil.
var ErrScriptResult = errors.New("unexpected script result")

// Script runs every message through a Lua function. The function receives the message as a string and returns
// the message to push, or nil to drop it.
type Script struct {
	stage.Base
	input    *channel.Reader
	output   *channel.Writer
	script   string
	function string
}

// NewScript binds input, output, script and the optional function name, "transform" by default. The script is
// loaded once to check it defines the function.
func NewScript(base stage.Base) (stage.Stage, error) {
	input, output, err := bindTransform(base)
	if err != nil {
		return nil, err
	}

	script, err := args.Require[string](base.Args, "script")
	if err != nil {
		return nil, err
	}

	function, err := args.Optional[string](base.Args, "function")
	if err != nil {
		return nil, err
	}

	scr := &Script{
		Base:     base,
		input:    input,
		output:   output,
		script:   script,
		function: function.OrElse(defaultScriptFunction),
	}

	L, _, err := scr.load()
	if err != nil {
		return nil, args.Invalid(base.Name, "script", err.Error())
	}
	L.Close()

	return scr, nil
}

// load creates a Lua state with the base, string, table and math libraries and runs the script in it.
func (s *Script) load() (*lua.LState, *lua.LFunction, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for name, open := range map[string]lua.LGFunction{
		lua.BaseLibName:   lua.OpenBase,
		lua.StringLibName: lua.OpenString,
		lua.TabLibName:    lua.OpenTable,
		lua.MathLibName:   lua.OpenMath,
	} {
		L.Push(L.NewFunction(open))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}

	err := L.DoString(s.script)
	if err != nil {
		L.Close()

		return nil, nil, errors.Wrap(err, "unable to load script")
	}

	fn, ok := L.GetGlobal(s.function).(*lua.LFunction)
	if !ok {
		L.Close()

		return nil, nil, errors.Errorf("script does not define function %s", s.function)
	}

	return L, fn, nil
}

func (s *Script) Exec(ctx context.Context) error {
	L, fn, err := s.load()
	if err != nil {
		return err
	}
	defer L.Close()

	L.SetContext(ctx)

	for {
		msg, err := s.input.Read(ctx)
		if err == io.EOF {
			return s.output.Close()
		}

		if err != nil {
			return err
		}

		err = L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(msg.String()))
		if err != nil {
			return errors.Wrapf(err, "unable to run %s on %q", s.function, msg.String())
		}

		ret := L.Get(-1)
		L.Pop(1)

		switch ret.Type() {
		case lua.LTNil:
			s.Log.Debug("dropped value", "value", msg.String())

			continue
		case lua.LTString, lua.LTNumber:
		default:
			return errors.Wrapf(ErrScriptResult, "%s returned a %s", s.function, ret.Type())
		}

		err = s.output.PushString(ctx, ret.String())
		if err != nil {
			return err
		}
	}
}
