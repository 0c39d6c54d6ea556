package script

// Program is the fully assembled, validated collection of all scenes from
// one script source. Built once at load time and immutable thereafter:
// hot reload replaces the whole Program atomically, never patches one.
type Program struct {
	entry  string
	order  []string // scene ids in declaration order
	scenes map[string][]Instruction
}

// Entry returns the entry scene id: the first scene declared in the file.
func (p *Program) Entry() string {
	return p.entry
}

// Scene returns the instruction body of the named scene.
func (p *Program) Scene(id string) ([]Instruction, bool) {
	body, ok := p.scenes[id]
	return body, ok
}

// SceneLen returns the number of instructions in the named scene, or -1 if
// the scene does not exist.
func (p *Program) SceneLen(id string) int {
	body, ok := p.scenes[id]
	if !ok {
		return -1
	}
	return len(body)
}

// Scenes returns the scene ids in declaration order. The slice is a copy.
func (p *Program) Scenes() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Instructions returns the total instruction count across all scenes.
func (p *Program) Instructions() int {
	n := 0
	for _, body := range p.scenes {
		n += len(body)
	}
	return n
}
