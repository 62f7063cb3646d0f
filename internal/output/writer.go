package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/zx06/xcred/internal/errors"
)

// TableFormatter 由希望以表格/CSV 输出的数据实现；ok=false 时退回 key/value 输出。
type TableFormatter interface {
	ToTableData() (columns []string, rows []map[string]any, ok bool)
}

type Writer struct {
	Out io.Writer
	Err io.Writer
}

func New(out, err io.Writer) Writer {
	return Writer{Out: out, Err: err}
}

func (w Writer) WriteOK(format Format, data any) error {
	return w.write(format, OKEnvelope(data))
}

func (w Writer) WriteError(format Format, xe *errors.XError) error {
	return w.write(format, ErrorEnvelope(xe))
}

func (w Writer) write(format Format, env Envelope) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w.Out)
		enc.SetEscapeHTML(false)
		return enc.Encode(env)
	case FormatYAML:
		b, err := yaml.Marshal(env)
		if err != nil {
			return err
		}
		_, err = w.Out.Write(b)
		if err != nil {
			return err
		}
		if len(b) == 0 || b[len(b)-1] != '\n' {
			_, _ = w.Out.Write([]byte("\n"))
		}
		return nil
	case FormatTable:
		return writeTable(w.Out, env)
	case FormatCSV:
		return writeCSV(w.Out, env)
	default:
		return errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": string(format)})
	}
}

type tableData struct {
	columns []string
	rows    []map[string]any
}

type profileListItem struct {
	Name        string
	Description string
	Backend     string
	Service     string
}

func writeTable(out io.Writer, env Envelope) error {
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	if !env.OK {
		_, _ = fmt.Fprintf(tw, "ok\t%v\n", false)
		if env.Error != nil {
			_, _ = fmt.Fprintf(tw, "error.code\t%s\n", env.Error.Code)
			_, _ = fmt.Fprintf(tw, "error.message\t%s\n", env.Error.Message)
		}
		return tw.Flush()
	}

	if profiles, ok := profilesOf(env.Data); ok {
		_, _ = fmt.Fprintln(tw, "NAME\tDESCRIPTION\tBACKEND\tSERVICE")
		_, _ = fmt.Fprintln(tw, "----\t-----------\t-------\t-------")
		for _, p := range profiles {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Description, p.Backend, p.Service)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "\n(%d %s)\n", len(profiles), plural(len(profiles), "profile"))
		return err
	}

	if td, ok := tableOf(env.Data); ok {
		_, _ = fmt.Fprintln(tw, strings.Join(td.columns, "\t"))
		seps := make([]string, len(td.columns))
		for i, c := range td.columns {
			seps[i] = strings.Repeat("-", len(c))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(seps, "\t"))
		for _, row := range td.rows {
			cells := make([]string, len(td.columns))
			for i, c := range td.columns {
				cells[i] = formatCellValue(row[c], "<null>")
			}
			_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "\n(%d %s)\n", len(td.rows), plural(len(td.rows), "row"))
		return err
	}

	for _, kv := range keyValues(env.Data) {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", kv[0], kv[1])
	}
	return tw.Flush()
}

func writeCSV(out io.Writer, env Envelope) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()
	if !env.OK {
		_ = cw.Write([]string{"ok", "false"})
		if env.Error != nil {
			_ = cw.Write([]string{"error.code", string(env.Error.Code)})
			_ = cw.Write([]string{"error.message", env.Error.Message})
		}
		return cw.Error()
	}

	if td, ok := tableOf(env.Data); ok {
		_ = cw.Write(td.columns)
		for _, row := range td.rows {
			rec := make([]string, len(td.columns))
			for i, c := range td.columns {
				rec[i] = formatCellValue(row[c], "")
			}
			_ = cw.Write(rec)
		}
		return cw.Error()
	}

	for _, kv := range keyValues(env.Data) {
		_ = cw.Write(kv[:])
	}
	return cw.Error()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// tableOf 识别三种表格数据：TableFormatter、{"columns","rows"} map、含 Columns/Rows 字段的结构体。
func tableOf(data any) (tableData, bool) {
	if tf, ok := data.(TableFormatter); ok {
		cols, rows, ok := tf.ToTableData()
		if ok {
			return tableData{columns: cols, rows: rows}, true
		}
		return tableData{}, false
	}
	if m, ok := data.(map[string]any); ok {
		cols, ok1 := extractStringSlice(m["columns"])
		rows, ok2 := extractMapSlice(m["rows"])
		if ok1 && ok2 {
			return tableData{columns: cols, rows: rows}, true
		}
		return tableData{}, false
	}
	return tryAsTableReflect(data)
}

func profilesOf(data any) ([]profileListItem, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}
	return tryAsProfileList(m["profiles"])
}

func tryAsProfileList(v any) ([]profileListItem, bool) {
	if items, ok := v.([]profileListItem); ok {
		return items, len(items) > 0
	}
	maps, ok := extractMapSlice(v)
	if !ok || len(maps) == 0 {
		return nil, false
	}
	out := make([]profileListItem, 0, len(maps))
	for _, m := range maps {
		name, _ := m["name"].(string)
		if name == "" {
			return nil, false
		}
		desc, _ := m["description"].(string)
		backend, _ := m["backend"].(string)
		service, _ := m["service"].(string)
		out = append(out, profileListItem{Name: name, Description: desc, Backend: backend, Service: service})
	}
	return out, true
}

func extractStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}

func extractMapSlice(v any) ([]map[string]any, bool) {
	switch s := v.(type) {
	case []map[string]any:
		return s, true
	case []any:
		out := make([]map[string]any, 0, len(s))
		for _, item := range s {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	default:
		return nil, false
	}
}

func tryAsTableReflect(data any) (tableData, bool) {
	if data == nil {
		return tableData{}, false
	}
	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return tableData{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return tableData{}, false
	}
	colsField := rv.FieldByName("Columns")
	rowsField := rv.FieldByName("Rows")
	if !colsField.IsValid() || !rowsField.IsValid() || !colsField.CanInterface() || !rowsField.CanInterface() {
		return tableData{}, false
	}
	cols, ok1 := extractStringSlice(colsField.Interface())
	rows, ok2 := extractMapSlice(rowsField.Interface())
	if !ok1 || !ok2 {
		return tableData{}, false
	}
	return tableData{columns: cols, rows: rows}, true
}

// keyValues 把任意数据展开为排好序的 key/value 行；非 map 数据先经 JSON 归一化。
func keyValues(data any) [][2]string {
	if data == nil {
		return nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		b, err := json.Marshal(data)
		if err != nil {
			return [][2]string{{"data", fmt.Sprint(data)}}
		}
		if err := json.Unmarshal(b, &m); err != nil {
			return [][2]string{{"data", string(b)}}
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, formatCellValue(m[k], "")})
	}
	return out
}

func formatCellValue(v any, null string) string {
	switch x := v.(type) {
	case nil:
		return null
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool, int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
