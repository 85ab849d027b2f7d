package handlers

import "encoding/json"

// remarshal converts a decoded frame payload into its concrete type.
func remarshal(in any, out any) {
	b, _ := json.Marshal(in)
	_ = json.Unmarshal(b, out)
}
