package artifact

// parentNode is the capability set an Artifact constructor needs from
// whatever it was derived from. Both *Excavation and *Artifact satisfy
// it, which is how a top-level Artifact can be "derived from" the
// Excavation itself (spec.md §3.2, design note 9: "the root pretends to
// be an Artifact only where the Artifact ctor touches up.top,
// up.children.append, and related hooks"). Keeping this interface
// unexported means callers outside the package can never construct a
// value satisfying it, so Artifact.parents can only ever contain the
// two known concrete types.
type parentNode interface {
	excavation() *Excavation
	attachChild(child *Artifact)
}

var (
	_ parentNode = (*Excavation)(nil)
	_ parentNode = (*Artifact)(nil)
)

func (e *Excavation) excavation() *Excavation { return e }

// attachChild is a no-op for Excavation: top-level admission is decided
// by addArtifact (by inspecting the new artifact's parent list), not by
// the Excavation tracking a children list of its own.
func (e *Excavation) attachChild(*Artifact) {}

func (a *Artifact) excavation() *Excavation { return a.top }

func (a *Artifact) attachChild(child *Artifact) {
	a.children = append(a.children, child)
}
