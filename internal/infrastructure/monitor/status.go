package monitor

import "time"

type Status struct {
	Backend   string    `json:"backend"`
	Storage   bool      `json:"storage"`
	Keys      int       `json:"keys,omitempty"`
	OpenTx    int       `json:"open_tx,omitempty"`
	ReadTx    int       `json:"read_tx,omitempty"`
	Error     string    `json:"error,omitempty"`
	LastCheck time.Time `json:"last_check"`
}
