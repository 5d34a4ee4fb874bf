package skill

import (
	"strings"
	"sync"
)

// Registry stores skills and directories. Lookups return copies of the
// registered records and iteration follows registration order.
type Registry struct {
	mu       sync.RWMutex
	skills   map[string]Skill
	order    []string
	dirs     map[string]Directory
	dirOrder []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		skills: make(map[string]Skill),
		dirs:   make(map[string]Directory),
	}
}

// Register adds s, replacing any skill with the same id in place.
func (r *Registry) Register(s Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(s)
}

func (r *Registry) register(s Skill) {
	if _, ok := r.skills[s.ID]; !ok {
		r.order = append(r.order, s.ID)
	}
	r.skills[s.ID] = s
}

// Unregister removes the skill with id and reports whether it was present.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.skills[id]; !ok {
		return false
	}
	delete(r.skills, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get looks up a skill by id.
func (r *Registry) Get(id string) (Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[id]
	return s, ok
}

// List returns every registered skill.
func (r *Registry) List() []Skill {
	return r.filter(func(Skill) bool { return true })
}

// ListByCategory returns the skills in category c.
func (r *Registry) ListByCategory(c Category) []Skill {
	return r.filter(func(s Skill) bool { return s.Category == c })
}

// RegisterDirectory records d and registers each of its skills. Skills of a
// previous registration of the same directory stay registered.
func (r *Registry) RegisterDirectory(d Directory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dirs[d.ID]; !ok {
		r.dirOrder = append(r.dirOrder, d.ID)
	}
	r.dirs[d.ID] = d
	for _, s := range d.Skills {
		r.register(s)
	}
}

// Directory looks up a directory by id.
func (r *Registry) Directory(id string) (Directory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dirs[id]
	return d, ok
}

// Directories returns registered directories in registration order.
func (r *Registry) Directories() []Directory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Directory, 0, len(r.dirOrder))
	for _, id := range r.dirOrder {
		out = append(out, r.dirs[id])
	}
	return out
}

// FindRelevant returns skills whose name or description contains any
// whitespace-separated word of text, ignoring case.
func (r *Registry) FindRelevant(text string) []Skill {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return nil
	}
	return r.filter(func(s Skill) bool {
		haystack := strings.ToLower(s.Name + " " + s.Description)
		for _, w := range words {
			if strings.Contains(haystack, w) {
				return true
			}
		}
		return false
	})
}

// CapabilitySummary renders the registry for planning prompts: a heading per
// category in first-seen order followed by one "- name: description" line
// per skill.
func (r *Registry) CapabilitySummary() string {
	skills := r.List()
	var categories []Category
	byCategory := make(map[Category][]Skill)
	for _, s := range skills {
		if _, ok := byCategory[s.Category]; !ok {
			categories = append(categories, s.Category)
		}
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	var b strings.Builder
	b.WriteString("Available Capabilities:\n\n")
	for _, c := range categories {
		b.WriteString("## ")
		b.WriteString(strings.ToUpper(string(c)))
		b.WriteString("\n")
		for _, s := range byCategory[c] {
			b.WriteString("- ")
			b.WriteString(s.Name)
			b.WriteString(": ")
			b.WriteString(s.Description)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Registry) filter(keep func(Skill) bool) []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Skill, 0, len(r.order))
	for _, id := range r.order {
		if s := r.skills[id]; keep(s) {
			out = append(out, s)
		}
	}
	return out
}
