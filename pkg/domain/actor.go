package domain

import "fmt"

// ActorKind discriminates the closed set of participant kinds. The pair
// (ID, Kind) is the only valid identity; neither field stands alone.
type ActorKind string

const (
	KindUser    ActorKind = "USER"
	KindSociete ActorKind = "SOCIETE"
	// KindSystem is valid only as a notification actor, never as a caller.
	KindSystem ActorKind = "SYSTEM"
)

// Valid reports whether the kind belongs to the closed set.
func (k ActorKind) Valid() bool {
	switch k {
	case KindUser, KindSociete, KindSystem:
		return true
	}
	return false
}

// Actor is the polymorphic (id, kind) identity carried through every
// service call. It is supplied by the authentication layer; the core only
// performs membership and ownership checks against it.
type Actor struct {
	ID   int64     `json:"id"`
	Kind ActorKind `json:"kind"`
}

func NewActor(id int64, kind ActorKind) Actor {
	return Actor{ID: id, Kind: kind}
}

func UserActor(id UserID) Actor       { return Actor{ID: int64(id), Kind: KindUser} }
func SocieteActor(id SocieteID) Actor { return Actor{ID: int64(id), Kind: KindSociete} }

// SystemActor is the origin for pure system notices.
var SystemActor = Actor{ID: 0, Kind: KindSystem}

// IsZero reports whether the actor is unset.
func (a Actor) IsZero() bool { return a.ID == 0 && a.Kind == "" }

// Validate rejects identities missing either half of the pair.
func (a Actor) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("invalid actor kind %q", a.Kind)
	}
	if a.Kind != KindSystem && a.ID <= 0 {
		return fmt.Errorf("invalid actor id %d", a.ID)
	}
	return nil
}

func (a Actor) IsUser() bool    { return a.Kind == KindUser }
func (a Actor) IsSociete() bool { return a.Kind == KindSociete }

func (a Actor) String() string { return fmt.Sprintf("%s:%d", a.Kind, a.ID) }
