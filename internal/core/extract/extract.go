// Package extract decodes submitted form data from HTTP requests into
// types.Values.
//
// Three encodings are accepted: a JSON object, urlencoded form posts and
// multipart form posts. In form posts a key written as "name[]" or
// "name[i]" always yields an array under "name"; a plain key yields text
// when it occurs once and an array when repeated. Multipart files are
// recorded by file name only.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/solatis/formkeeper/internal/types"
)

// FromJSON decodes a JSON object. Numbers keep full precision until they
// are converted to float64.
func FromJSON(body []byte) (types.Values, error) {
	if len(body) > types.MaxSubmissionSize {
		return nil, types.ErrSubmissionTooLarge
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", types.ErrInvalidData)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", types.ErrInvalidData)
	}
	values, err := types.ValuesFromMap(raw)
	if err != nil {
		return nil, err
	}
	if err := checkLimits(values); err != nil {
		return nil, err
	}
	return values, nil
}

// baseKey strips a trailing bracket suffix: "tags[]" and "tags[0]" both
// become "tags". The second result reports whether a suffix was present.
func baseKey(key string) (string, bool) {
	i := strings.IndexByte(key, '[')
	if i <= 0 || !strings.HasSuffix(key, "]") {
		return key, false
	}
	return key[:i], true
}

// keyIndex returns the numeric index of "name[i]".
func keyIndex(key string) (int, bool) {
	i := strings.IndexByte(key, '[')
	if i <= 0 || !strings.HasSuffix(key, "]") {
		return 0, false
	}
	n, err := strconv.Atoi(key[i+1 : len(key)-1])
	return n, err == nil
}

// keyLess orders keys so that "tags[2]" sorts before "tags[10]".
func keyLess(a, b string) bool {
	ba, _ := baseKey(a)
	bb, _ := baseKey(b)
	if ba != bb {
		return ba < bb
	}
	ia, oka := keyIndex(a)
	ib, okb := keyIndex(b)
	if oka && okb {
		return ia < ib
	}
	return a < b
}

// FromURLValues converts parsed form values.
func FromURLValues(form url.Values) (types.Values, error) {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	arrays := make(map[string][]string)
	out := make(types.Values)
	for _, key := range keys {
		items := form[key]
		name, bracket := baseKey(key)
		if name == "" {
			continue
		}
		if bracket {
			arrays[name] = append(arrays[name], items...)
			continue
		}
		if len(items) == 1 {
			out[name] = types.Text(items[0])
		} else {
			arrays[name] = append(arrays[name], items...)
		}
	}
	for name, items := range arrays {
		if existing, ok := out[name].AsString(); ok {
			items = append([]string{existing}, items...)
		}
		out[name] = types.Array(items)
	}

	if err := checkLimits(out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromMultipart converts a parsed multipart form. File parts contribute
// their file names.
func FromMultipart(form *multipart.Form) (types.Values, error) {
	merged := url.Values{}
	for k, vs := range form.Value {
		merged[k] = append(merged[k], vs...)
	}
	for k, files := range form.File {
		for _, fh := range files {
			if fh.Filename == "" {
				return nil, fmt.Errorf("%w: part %q has no file name", types.ErrFileUpload, k)
			}
			merged[k] = append(merged[k], fh.Filename)
		}
	}
	return FromURLValues(merged)
}

// FromRequest decodes the request body according to its Content-Type.
// Bodies larger than maxBytes fail with ErrSubmissionTooLarge.
func FromRequest(r *http.Request, maxBytes int64) (types.Values, error) {
	if maxBytes <= 0 || maxBytes > types.MaxSubmissionSize {
		maxBytes = types.MaxSubmissionSize
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = "application/x-www-form-urlencoded"
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	switch mediaType {
	case "application/json":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, readError(err)
		}
		return FromJSON(body)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(types.MaxMultipartMemory); err != nil {
			return nil, readError(err)
		}
		defer r.MultipartForm.RemoveAll()
		return FromMultipart(r.MultipartForm)
	default:
		if err := r.ParseForm(); err != nil {
			return nil, readError(err)
		}
		return FromURLValues(r.PostForm)
	}
}

func readError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return types.ErrSubmissionTooLarge
	}
	return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
}

func checkLimits(values types.Values) error {
	if len(values) > types.MaxSubmissionFields {
		return fmt.Errorf("%w: more than %d fields", types.ErrSubmissionTooLarge, types.MaxSubmissionFields)
	}
	for name, v := range values {
		if items, ok := v.AsArray(); ok {
			if len(items) > types.MaxArrayValues {
				return fmt.Errorf("%w: field %q has more than %d values", types.ErrSubmissionTooLarge, name, types.MaxArrayValues)
			}
			for _, item := range items {
				if err := checkText(name, item); err != nil {
					return err
				}
			}
			continue
		}
		if s, ok := v.AsString(); ok {
			if err := checkText(name, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkText(name, s string) error {
	if len(s) > types.MaxFieldValueLength {
		return fmt.Errorf("%w: field %q exceeds %d bytes", types.ErrSubmissionTooLarge, name, types.MaxFieldValueLength)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: field %q is not valid UTF-8", types.ErrInvalidData, name)
	}
	return nil
}
