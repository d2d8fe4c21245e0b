package cli

var (
	GetIndexConfig   = getIndexConfig
	IndexCollections = indexCollections
	LogIndexDiff     = logIndexDiff
	NewIndexClient   = newIndexClient
	CmdSLAList       = cmdSLAList
)
