package ansimxp

// LabelKind identifies which structural MXP element, if any, annotates a
// span.
type LabelKind int

const (
	LabelNone LabelKind = iota
	LabelA
	LabelSend
	LabelHeader
)

// Label is the MXP structural annotation carried by a Span: a hyperlink, a
// send-command link, or a heading level.
type Label struct {
	Kind   LabelKind
	Href   string
	Hint   string
	Prompt bool
	Level  int
}

// LabelStack holds at most one active structural label: pushing a new one
// while one is active drops the prior one (spec §4.3, design note (b): "the
// source's handling of <A>/<SEND>/<Hn> explicitly does not nest").
type LabelStack struct {
	top *Label
	seq uint64
}

// Push installs a new label, discarding whatever was active.
func (ls *LabelStack) Push(l Label) {
	ls.top = &l
	ls.seq++
}

// Top returns the active label, or nil.
func (ls *LabelStack) Top() *Label { return ls.top }

// Matches reports whether the active label is kind (and, for headers, the
// given level) without mutating the stack.
func (ls *LabelStack) Matches(kind LabelKind, level int) bool {
	if ls.top == nil || ls.top.Kind != kind {
		return false
	}
	if kind == LabelHeader && ls.top.Level != level {
		return false
	}
	return true
}

// Pop clears the active label if it matches kind (and, for headers, level).
// Returns true if a label was cleared.
func (ls *LabelStack) Pop(kind LabelKind, level int) bool {
	if !ls.Matches(kind, level) {
		return false
	}
	ls.top = nil
	return true
}
