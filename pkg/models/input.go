package models

// Input is a person record attached to an audit. AFIP and internal audits
// expose the same shape from different endpoints.
type Input struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	LastName      string  `json:"lastName"`
	CUIL          string  `json:"cuil"`
	File          string  `json:"file"`
	Allocation    string  `json:"allocation"`
	Client        *Client `json:"client,omitempty"`
	UOC           string  `json:"uoc"`
	Branch        *Branch `json:"branch,omitempty"`
	AdmissionDate string  `json:"admissionDate"` // dd-MM-yyyy
	Audit         *Audit  `json:"audit,omitempty"`
}

// Client is the customer an input is allocated to.
type Client struct {
	ID   int64  `json:"id"`
	Name string `json:"client"`
}

// Branch is the branch office of an input.
type Branch struct {
	ID   int64  `json:"id"`
	Name string `json:"branch"`
}

// DisplayName returns "LastName, Name".
func (in Input) DisplayName() string {
	switch {
	case in.LastName == "":
		return in.Name
	case in.Name == "":
		return in.LastName
	}
	return in.LastName + ", " + in.Name
}

// ClientName returns the client name or N/A.
func (in Input) ClientName() string {
	if in.Client == nil || in.Client.Name == "" {
		return "N/A"
	}
	return in.Client.Name
}

// BranchName returns the branch name or N/A.
func (in Input) BranchName() string {
	if in.Branch == nil || in.Branch.Name == "" {
		return "N/A"
	}
	return in.Branch.Name
}
