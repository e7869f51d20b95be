package browse

// Selection tracks the single open item. Selecting the open item again
// closes it.
type Selection struct {
	active    string
	listeners []func(active string)
}

func NewSelection() *Selection {
	return &Selection{}
}

func (s *Selection) Select(id string) {
	if id == s.active {
		s.set("")
		return
	}
	s.set(id)
}

func (s *Selection) Close() {
	s.set("")
}

func (s *Selection) Active() string {
	return s.active
}

func (s *Selection) IsOpen() bool {
	return s.active != ""
}

// OnChange registers fn to run after every transition. It is not called
// when the active id does not change.
func (s *Selection) OnChange(fn func(active string)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Selection) set(id string) {
	if id == s.active {
		return
	}
	s.active = id
	for _, fn := range s.listeners {
		fn(id)
	}
}
