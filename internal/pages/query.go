package pages

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/gradpulse/internal/domain/filter"
)

// ParseQuery reads a request from URL query form. Dimension keys feed the
// selection and "cohorts" is a comma list. Every key except "cohorts" is also
// a page parameter, since pages that pick one cohort outside the cascade read
// it as the "cohort" parameter. Repeated keys are rejected.
func ParseQuery(q url.Values) (Request, error) {
	req := Request{
		Selection: filter.Selection{Values: make(map[filter.Dimension]string)},
		Params:    make(map[string]string),
	}
	for key, vals := range q {
		if len(vals) > 1 {
			return Request{}, fmt.Errorf("%w: %s given %d times", ErrInvalidParam, key, len(vals))
		}
		v := strings.TrimSpace(vals[0])
		d := filter.Dimension(key)
		if d == filter.CohortMulti {
			for _, c := range strings.Split(v, ",") {
				if c = strings.TrimSpace(c); c != "" {
					req.Selection.Cohorts = append(req.Selection.Cohorts, c)
				}
			}
			continue
		}
		if d.Known() && v != "" {
			req.Selection.Values[d] = v
		}
		req.Params[key] = v
	}
	return req, nil
}

// Query writes r in URL query form; ParseQuery reads it back.
func (r Request) Query() url.Values {
	q := url.Values{}
	for d, v := range r.Selection.Values {
		if !filter.IsAll(v) {
			q.Set(string(d), v)
		}
	}
	if len(r.Selection.Cohorts) > 0 {
		q.Set(string(filter.CohortMulti), strings.Join(r.Selection.Cohorts, ","))
	}
	for k, v := range r.Params {
		if !q.Has(k) && v != "" {
			q.Set(k, v)
		}
	}
	return q
}
