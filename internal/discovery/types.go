package discovery

// Route is one discovered (path, method) pair believed to be reachable on
// the target. Identity is the path alone within a single discovery run;
// the method is informational.
type Route struct {
	Path         string                 `json:"path"`
	Method       string                 `json:"method"`
	Inputs       map[string]interface{} `json:"inputs,omitempty"`
	AuthRequired bool                   `json:"authRequired,omitempty"`
}
