package model

// Collection groups records and belongs to one or more departments.
type Collection struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Departments []DepartmentRef `json:"departments,omitempty"`
	Records     []Record        `json:"records,omitempty"`
	Timestamps
}

func (c Collection) GetID() string { return c.ID }

// DepartmentIDs returns ids of the embedded department summaries.
func (c Collection) DepartmentIDs() []string {
	ids := make([]string, 0, len(c.Departments))
	for _, d := range c.Departments {
		ids = append(ids, d.ID)
	}
	return ids
}

// CollectionRef — ссылка записи на родительскую коллекцию.
type CollectionRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CollectionInput — полезная нагрузка create/update.
type CollectionInput struct {
	Title         string   `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	DepartmentIDs []string `json:"departmentIds,omitempty"`
}
