package metadata

import "fmt"

// Stage names the step at which an unresolved outcome stopped.
type Stage string

const (
	StageRPC        Stage = "rpc"
	StageDecode     Stage = "decode"
	StageEmptyURI   Stage = "empty_uri"
	StageMetadata   Stage = "metadata"
	StageEmptyImage Stage = "empty_image"
)

// Outcome is the result of resolving one token id. A resolved outcome has a
// non-empty URL and no Stage.
type Outcome struct {
	ID    int
	URL   string
	Kind  Kind  // empty when the token URI was never obtained
	Stage Stage // empty when resolved
	Err   error
}

// Resolved reports whether the outcome carries an image URL.
func (o Outcome) Resolved() bool {
	return o.URL != "" && o.Stage == ""
}

func (o Outcome) String() string {
	if o.Resolved() {
		return fmt.Sprintf("%d: %s", o.ID, o.URL)
	}
	if o.Err != nil {
		return fmt.Sprintf("%d: unresolved at %s: %v", o.ID, o.Stage, o.Err)
	}
	return fmt.Sprintf("%d: unresolved at %s", o.ID, o.Stage)
}
