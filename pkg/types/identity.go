package types

// CallerIdentity represents AWS caller identity information
type CallerIdentity struct {
	Account string `json:"account"`
	Arn     string `json:"arn"`
	UserID  string `json:"userId"`
}

// AWSProfile is a named profile from the shared AWS config files
type AWSProfile struct {
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
	Source string `json:"source"` // credentials or config
}
