package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 16

// params holds scalar request inputs. They arrive as query parameters, or as
// a flat JSON object when the request declares application/json; body values
// win over query values.
type params map[string]string

func readParams(r *http.Request) (params, error) {
	p := params{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/json" || r.Body == nil {
		return p, nil
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		return nil, fmt.Errorf("malformed JSON body: %w", err)
	}
	for k, v := range body {
		switch t := v.(type) {
		case nil:
		case string:
			p[k] = t
		case json.Number:
			p[k] = t.String()
		default:
			return nil, fmt.Errorf("%s must be a string or a number", k)
		}
	}
	return p, nil
}

func (p params) required(name string) (string, error) {
	v := strings.TrimSpace(p[name])
	if v == "" {
		return "", fmt.Errorf("missing required parameter: %s", name)
	}
	return v, nil
}

func (p params) optional(name string) string {
	return strings.TrimSpace(p[name])
}

func (p params) float(name string) (float64, error) {
	raw, err := p.required(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number", name)
	}
	return v, nil
}
