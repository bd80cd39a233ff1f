package opengl

import "github.com/pkg/errors"

// QueryObject is a samples-passed occlusion query.
type QueryObject struct {
	api    API
	id     uint32
	active bool
}

func NewQueryObject(api API) *QueryObject {
	return &QueryObject{api: api}
}

func (q *QueryObject) ID() uint32 { return q.id }

func (q *QueryObject) Generate() error {
	if q.id != 0 {
		return nil
	}
	q.id = q.api.GenQuery()
	return Check(q.api, "QueryObject.Generate")
}

func (q *QueryObject) Begin() error {
	if q.id == 0 {
		return errors.Wrap(ErrNotGenerated, "QueryObject.Begin")
	}
	q.api.BeginQuery(SAMPLES_PASSED, q.id)
	q.active = true
	return nil
}

func (q *QueryObject) End() {
	if !q.active {
		return
	}
	q.api.EndQuery(SAMPLES_PASSED)
	q.active = false
}

// Result blocks until the GPU has finished the bracketed draw and returns the
// number of samples that passed.
func (q *QueryObject) Result() (uint32, error) {
	if q.active {
		return 0, errors.New("QueryObject.Result: query still active")
	}
	n := q.api.QueryResult(q.id)
	return n, Check(q.api, "QueryObject.Result")
}

func (q *QueryObject) Delete() {
	if q.id == 0 {
		return
	}
	q.api.DeleteQuery(q.id)
	q.id = 0
}
