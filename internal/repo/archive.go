package repo

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ArchiveDesk/internal/model"
)

// Archive — хранилище stub-сервера API архива поверх GORM.
// Связи хранятся по id и разворачиваются во вложенные сводки при чтении.
type Archive struct {
	// mu сериализует read-modify-write поверх БД
	mu  sync.Mutex
	db  *gorm.DB
	now func() time.Time
}

// StoredFile — содержимое загруженного файла.
type StoredFile struct {
	Asset   model.FileAsset
	Content []byte
}

// NewArchive оборачивает уже мигрированную БД (см. InitDB).
func NewArchive(db *gorm.DB) *Archive {
	return &Archive{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// AddUser registers a user with a bcrypt-hashed password; returns its id.
func (a *Archive) AddUser(ctx context.Context, login, password, role string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	u := userRow{ID: uuid.NewString(), Login: login, Name: login, Role: role, PasswordHash: string(hash)}
	if err := a.db.WithContext(ctx).Create(&u).Error; err != nil {
		return "", err
	}
	return u.ID, nil
}

// Authenticate checks credentials.
func (a *Archive) Authenticate(ctx context.Context, login, password string) (model.User, bool) {
	var u userRow
	if err := a.db.WithContext(ctx).Where("login = ?", login).First(&u).Error; err != nil {
		return model.User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return model.User{}, false
	}
	return model.User{ID: u.ID, Login: u.Login, Name: u.Name, Role: u.Role}, true
}

// --- departments ---

// Departments lists departments with their collections embedded.
func (a *Archive) Departments(ctx context.Context) ([]model.Department, error) {
	db := a.db.WithContext(ctx)
	var rows []departmentRow
	if err := db.Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	cols, err := a.collectionRows(db)
	if err != nil {
		return nil, err
	}
	out := make([]model.Department, 0, len(rows))
	for _, d := range rows {
		out = append(out, departmentView(d, cols))
	}
	return out, nil
}

// Department returns one department.
func (a *Archive) Department(ctx context.Context, id string) (model.Department, error) {
	db := a.db.WithContext(ctx)
	var d departmentRow
	if err := db.Where("id = ?", id).First(&d).Error; err != nil {
		return model.Department{}, notFound(err)
	}
	cols, err := a.collectionRows(db)
	if err != nil {
		return model.Department{}, err
	}
	return departmentView(d, cols), nil
}

// SaveDepartment создаёт (id == "") или обновляет подразделение.
func (a *Archive) SaveDepartment(ctx context.Context, id string, in model.DepartmentInput) (model.Department, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	db := a.db.WithContext(ctx)

	var d departmentRow
	if id == "" {
		if strings.TrimSpace(in.Name) == "" {
			return model.Department{}, invalidf("Department name is required")
		}
		d.ID = uuid.NewString()
	} else if err := db.Where("id = ?", id).First(&d).Error; err != nil {
		return model.Department{}, notFound(err)
	}
	if in.Name != "" {
		d.Name = strings.TrimSpace(in.Name)
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	if err := db.Save(&d).Error; err != nil {
		return model.Department{}, err
	}
	cols, err := a.collectionRows(db)
	if err != nil {
		return model.Department{}, err
	}
	return departmentView(d, cols), nil
}

// DeleteDepartment removes a department and unlinks it from collections.
func (a *Archive) DeleteDepartment(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	db := a.db.WithContext(ctx)

	res := db.Where("id = ?", id).Delete(&departmentRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	cols, err := a.collectionRows(db)
	if err != nil {
		return err
	}
	for _, c := range cols {
		if !slices.Contains(c.DepartmentIDs, id) {
			continue
		}
		c.DepartmentIDs = slices.DeleteFunc(c.DepartmentIDs, func(x string) bool { return x == id })
		if err := db.Save(&c).Error; err != nil {
			return err
		}
	}
	return nil
}

func departmentView(d departmentRow, cols []collectionRow) model.Department {
	v := model.Department{
		ID: d.ID, Name: d.Name, Description: d.Description,
		Timestamps: model.Timestamps{CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
	}
	for _, c := range cols {
		if slices.Contains(c.DepartmentIDs, d.ID) {
			v.Collections = append(v.Collections, model.Collection{
				ID: c.ID, Title: c.Title, Description: c.Description,
				Timestamps: model.Timestamps{CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
			})
		}
	}
	return v
}

// --- collections ---

func (a *Archive) collectionRows(db *gorm.DB) ([]collectionRow, error) {
	var rows []collectionRow
	err := db.Order("seq").Find(&rows).Error
	return rows, err
}

func (a *Archive) departmentRefs(db *gorm.DB) (map[string]model.DepartmentRef, error) {
	var rows []departmentRow
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	refs := make(map[string]model.DepartmentRef, len(rows))
	for _, d := range rows {
		refs[d.ID] = model.DepartmentRef{ID: d.ID, Name: d.Name}
	}
	return refs, nil
}

// Collections lists collections with departments and records embedded.
func (a *Archive) Collections(ctx context.Context) ([]model.Collection, error) {
	db := a.db.WithContext(ctx)
	cols, err := a.collectionRows(db)
	if err != nil {
		return nil, err
	}
	refs, err := a.departmentRefs(db)
	if err != nil {
		return nil, err
	}
	var recs []recordRow
	if err := db.Order("seq").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]model.Collection, 0, len(cols))
	for _, c := range cols {
		out = append(out, collectionView(c, refs, recs))
	}
	return out, nil
}

// Collection returns one collection.
func (a *Archive) Collection(ctx context.Context, id string) (model.Collection, error) {
	db := a.db.WithContext(ctx)
	var c collectionRow
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return model.Collection{}, notFound(err)
	}
	return a.collectionViewOf(db, c)
}

func (a *Archive) collectionViewOf(db *gorm.DB, c collectionRow) (model.Collection, error) {
	refs, err := a.departmentRefs(db)
	if err != nil {
		return model.Collection{}, err
	}
	var recs []recordRow
	if err := db.Where("collection_id = ?", c.ID).Order("seq").Find(&recs).Error; err != nil {
		return model.Collection{}, err
	}
	return collectionView(c, refs, recs), nil
}

// SaveCollection создаёт (id == "") или обновляет коллекцию.
func (a *Archive) SaveCollection(ctx context.Context, id string, in model.CollectionInput) (model.Collection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	db := a.db.WithContext(ctx)

	refs, err := a.departmentRefs(db)
	if err != nil {
		return model.Collection{}, err
	}
	for _, depID := range in.DepartmentIDs {
		if _, ok := refs[depID]; !ok {
			return model.Collection{}, invalidf("Unknown department %s", depID)
		}
	}
	var c collectionRow
	if id == "" {
		if strings.TrimSpace(in.Title) == "" {
			return model.Collection{}, invalidf("Collection title is required")
		}
		if len(in.DepartmentIDs) == 0 {
			return model.Collection{}, invalidf("At least one department is required")
		}
		c.ID = uuid.NewString()
	} else if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return model.Collection{}, notFound(err)
	}
	if in.Title != "" {
		c.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if len(in.DepartmentIDs) > 0 {
		c.DepartmentIDs = append([]string(nil), in.DepartmentIDs...)
	}
	if err := db.Save(&c).Error; err != nil {
		return model.Collection{}, err
	}
	return a.collectionViewOf(db, c)
}

// DeleteCollection removes a collection; its records become orphans.
func (a *Archive) DeleteCollection(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	db := a.db.WithContext(ctx)

	res := db.Where("id = ?", id).Delete(&collectionRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return db.Model(&recordRow{}).Where("collection_id = ?", id).Update("collection_id", "").Error
}

func collectionView(c collectionRow, refs map[string]model.DepartmentRef, recs []recordRow) model.Collection {
	v := model.Collection{
		ID: c.ID, Title: c.Title, Description: c.Description,
		Timestamps: model.Timestamps{CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
	}
	for _, depID := range c.DepartmentIDs {
		if d, ok := refs[depID]; ok {
			v.Departments = append(v.Departments, d)
		}
	}
	ref := &model.CollectionRef{ID: c.ID, Title: c.Title}
	for _, r := range recs {
		if r.CollectionID == c.ID {
			v.Records = append(v.Records, recordView(r, ref))
		}
	}
	return v
}
