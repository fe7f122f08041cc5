package model

// Department — подразделение архива со встроенным (возможно устаревшим) списком коллекций.
type Department struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Collections []Collection `json:"collections,omitempty"`
	Timestamps
}

func (d Department) GetID() string { return d.ID }

// DepartmentRef is the summary embedded into collections.
type DepartmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DepartmentInput — полезная нагрузка create/update.
type DepartmentInput struct {
	Name        string  `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
