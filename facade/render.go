package facade

import (
	"fmt"
	"path"
	"runtime"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// spewConfig renders composite values on a single line with stable map order
var spewConfig = spew.ConfigState{
	Indent:                  "",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// sprint joins args with single spaces.
func sprint(args []any) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch v := arg.(type) {
		case string:
			sb.WriteString(v)
		case []byte:
			sb.Write(v)
		case error:
			sb.WriteString(v.Error())
		case fmt.Stringer:
			sb.WriteString(v.String())
		case bool:
			sb.WriteString(strconv.FormatBool(v))
		case int:
			sb.WriteString(strconv.Itoa(v))
		case int64:
			sb.WriteString(strconv.FormatInt(v, 10))
		case uint64:
			sb.WriteString(strconv.FormatUint(v, 10))
		case float64:
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case nil:
			sb.WriteString("<nil>")
		default:
			sb.WriteString(spewConfig.Sprintf("%v", v))
		}
	}
	return sb.String()
}

// callerModule returns the import path of the package skip frames above
// its caller, or "" if it cannot be determined.
func callerModule(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	return packagePath(fn.Name())
}

// packagePath strips the function part from a fully qualified function name,
// e.g. "github.com/a/b.(*T).M" -> "github.com/a/b".
func packagePath(funcName string) string {
	dir, base := path.Split(funcName)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return dir + base
}
