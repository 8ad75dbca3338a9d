package model

// StageInfo describes a stage wired into a pipeline.
type StageInfo struct {
	Name string
	// Inputs and Outputs are the names of the channels the stage reads from and writes to.
	Inputs  []string
	Outputs []string
}

// ChannelInfo describes a channel wired into a pipeline.
type ChannelInfo struct {
	ID       string
	Name     string
	Capacity int
	// Producer and Consumer are the names of the stages owning the Writer and the Reader.
	Producer string
	Consumer string
}
