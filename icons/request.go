package icons

// Request is a distinct icon referenced during one pass.
type Request struct {
	Name     string // icon name as written in the call
	Key      string // NameToKey(Name)
	Variable string // Prefix + Key
	Path     string // absolute file path, empty when name escapes root
	Refs     int    // number of call sites referencing the icon
	Encoded  string // data URI, empty until loaded
	Err      error  // *PathEscapeError, *KeyError or *LoadError

	rel string // slash separated path relative to root, passed to Loader
}

// Warning is a non fatal problem with a single icon.
type Warning struct {
	Name string
	Err  error
}

func (w Warning) String() string {
	return w.Err.Error()
}

// requestSet keeps requests of a single pass in order of first reference.
type requestSet struct {
	byName map[string]*Request
	order  []*Request
}

func newRequestSet() *requestSet {
	return &requestSet{byName: make(map[string]*Request)}
}

func (s *requestSet) get(name string) (*Request, bool) {
	req, ok := s.byName[name]
	return req, ok
}

func (s *requestSet) add(req *Request) {
	s.byName[req.Name] = req
	s.order = append(s.order, req)
}

func (s *requestSet) len() int {
	return len(s.order)
}

// pending returns requests which still have to be loaded.
func (s *requestSet) pending() []*Request {
	var out []*Request
	for _, req := range s.order {
		if req.Err == nil && req.Encoded == "" {
			out = append(out, req)
		}
	}
	return out
}
