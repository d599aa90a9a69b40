package model

// NewFolderParams holds parameters for creating a new folder node.
type NewFolderParams struct {
	ID       string // generated when empty
	Title    string
	Hidden   bool
	Children []Node
}

// NewFolder creates a folder node with a generated UUID.
// Children is never nil so the folder encodes as "children": [].
func NewFolder(params NewFolderParams) Node {
	id := params.ID
	if id == "" {
		id = GenerateUUID()
	}

	children := params.Children
	if children == nil {
		children = []Node{}
	}

	return Node{
		Kind:     KindFolder,
		ID:       id,
		Title:    params.Title,
		Hidden:   params.Hidden,
		Children: children,
	}
}
