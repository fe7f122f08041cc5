package commands

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"ArchiveDesk/internal/cli/service"
	"ArchiveDesk/internal/cli/state"
	"ArchiveDesk/internal/cli/store"
	"ArchiveDesk/internal/config"
	"ArchiveDesk/internal/model"
)

type recordsCmd struct{}

func (recordsCmd) Name() string { return "records" }
func (recordsCmd) Description() string {
	return "Список записей с фильтрами и страницами"
}
func (recordsCmd) Usage() string {
	return "records [--collection <id>] [--department <id>] [--limit n] [--tier restricted|confidential] [--q text] [--access level] [--page n] [--size n]"
}

func (recordsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("records")
	var q service.RecordQuery
	fs.StringVar(&q.CollectionID, "collection", "", "id коллекции")
	fs.StringVar(&q.DepartmentID, "department", "", "id подразделения")
	fs.IntVar(&q.Limit, "limit", 0, "максимум записей с сервера")
	tier := fs.String("tier", "", "restricted или confidential")
	text := fs.String("q", "", "поиск по названию, описанию и тегам")
	access := fs.String("access", "", "уровень доступа")
	page := fs.Int("page", 1, "номер страницы")
	size := fs.Int("size", 20, "размер страницы")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return ErrUsage
	}
	var filter service.RecordFilter
	filter.Query = *text
	if *access != "" {
		lvl, err := model.ParseAccessLevel(*access)
		if err != nil {
			return err
		}
		filter.AccessLevel = lvl
	}

	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()

	st := root.Records.Store()
	switch strings.ToLower(*tier) {
	case "":
		err = root.Records.FetchList(ctx, q)
	case "restricted":
		err = root.Records.FetchRestricted(ctx)
	case "confidential":
		err = root.Records.FetchConfidential(ctx)
	default:
		return ErrUsage
	}
	if err != nil {
		return report(err, st.Err(), "Failed to fetch records")
	}

	matched := service.FilterRecords(st.Items(), filter)
	rows, info := store.Paginate(matched, *page, *size)
	if len(rows) == 0 {
		fmt.Fprintln(Out, "Нет записей")
		return nil
	}
	for _, r := range rows {
		col := "-"
		if r.Collection != nil {
			col = r.Collection.Title
		}
		fmt.Fprintf(Out, "- %s  %s  [%s]  collection=%s  files=%d\n", r.ID, r.Title, r.AccessLevel, col, len(r.FileAssets))
	}
	fmt.Fprintf(Out, "Страница %d из %d, всего: %d\n", info.Page, info.Pages, info.Total)
	return nil
}

type recordCmd struct{}

func (recordCmd) Name() string        { return "record" }
func (recordCmd) Description() string { return "Карточка записи с файлами" }
func (recordCmd) Usage() string       { return "record <id>" }

func (recordCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()

	rec, err := root.Records.FetchByID(ctx, args[0])
	if err != nil {
		return report(err, root.Records.Store().Err(), "Failed to fetch record")
	}
	printRecord(root, rec)
	return nil
}

func printRecord(root *state.Root, rec model.Record) {
	fmt.Fprintf(Out, "ID: %s\nTitle: %s\nAccess: %s\n", rec.ID, rec.Title, rec.AccessLevel)
	fmt.Fprintf(Out, "Description: %s\n", orDash(rec.Description))
	if rec.Collection != nil {
		fmt.Fprintf(Out, "Collection: %s (%s)\n", rec.Collection.Title, rec.Collection.ID)
	}
	if terms := model.Terms(rec.SubjectTags); len(terms) > 0 {
		fmt.Fprintf(Out, "Tags: %s\n", strings.Join(terms, ", "))
	}
	fmt.Fprintf(Out, "Updated: %s\n", formatTime(&rec.UpdatedAt))
	if len(rec.FileAssets) == 0 {
		return
	}

	sess := state.Session(root)
	role := ""
	if sess != nil {
		role = sess.Role
	}
	if !rec.AccessLevel.Permits(sess != nil, role) {
		fmt.Fprintf(Out, "Files: %d (access to %s files requires a permitted account)\n", len(rec.FileAssets), rec.AccessLevel)
		return
	}
	fmt.Fprintln(Out, "Files:")
	for _, f := range rec.FileAssets {
		size := "?"
		if n, err := f.Bytes(); err == nil {
			size = humanize.Bytes(uint64(n))
		}
		fmt.Fprintf(Out, "  - %s  %s  %s  %s\n", f.Filename, size, f.Preview(), f.StoragePath)
	}
}

// recordFlags — общие флаги record-add и record-edit.
type recordFlags struct {
	title, description, collection, access optString
	tags, files                            listFlag
	clearTags                              bool // только record-edit
}

func (rf *recordFlags) register(fs *flag.FlagSet) {
	fs.Var(&rf.title, "title", "название")
	fs.Var(&rf.description, "description", "описание")
	fs.Var(&rf.collection, "collection", "id коллекции")
	fs.Var(&rf.access, "access", "PUBLIC, RESTRICTED или CONFIDENTIAL")
	fs.Var(&rf.tags, "tag", "тематический тег (можно повторять)")
	fs.Var(&rf.files, "file", "путь к файлу (можно повторять)")
}

// input открывает файлы; close закрывает их после отправки.
func (rf *recordFlags) input() (in model.RecordInput, closeFn func(), err error) {
	in = model.RecordInput{
		Title:        rf.title.ptr(),
		Description:  rf.description.ptr(),
		CollectionID: rf.collection.ptr(),
	}
	if rf.access.set {
		lvl, err := model.ParseAccessLevel(rf.access.value)
		if err != nil {
			return in, nil, err
		}
		in.AccessLevel = &lvl
	}
	if rf.clearTags {
		if len(rf.tags) > 0 {
			return in, nil, fmt.Errorf("%w: --clear-tags conflicts with --tag", ErrUsage)
		}
		in.SubjectTags = []string{}
	}
	if len(rf.tags) > 0 {
		in.SubjectTags = rf.tags
	}
	var opened []*os.File
	closeFn = func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, p := range rf.files {
		f, err := os.Open(p)
		if err != nil {
			closeFn()
			return in, nil, fmt.Errorf("open %s: %w", p, err)
		}
		opened = append(opened, f)
		ct := mime.TypeByExtension(filepath.Ext(p))
		if ct == "" {
			ct = "application/octet-stream"
		}
		in.Files = append(in.Files, model.Upload{Filename: filepath.Base(p), ContentType: ct, Content: f})
	}
	return in, closeFn, nil
}

type recordAddCmd struct{}

func (recordAddCmd) Name() string { return "record-add" }
func (recordAddCmd) Description() string {
	return "Создать запись (файлы уходят multipart'ом)"
}
func (recordAddCmd) Usage() string {
	return "record-add --title <t> --access <level> [--collection <id>] [--description <text>] [--tag t]... [--file path]..."
}

func (recordAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("record-add")
	var rf recordFlags
	rf.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return ErrUsage
	}
	in, closeFiles, err := rf.input()
	if err != nil {
		return err
	}
	defer closeFiles()

	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := requireSession(root); err != nil {
		return err
	}

	rec, err := root.Records.Create(ctx, in)
	if err != nil {
		return report(err, root.Records.Store().Err(), "Failed to create record")
	}
	fmt.Fprintf(Out, "Created record %s (%s), files: %d\n", rec.Title, rec.ID, len(rec.FileAssets))
	return nil
}

type recordEditCmd struct{}

func (recordEditCmd) Name() string { return "record-edit" }
func (recordEditCmd) Description() string {
	return "Изменить запись; новые файлы дописываются"
}
func (recordEditCmd) Usage() string {
	return "record-edit [--title <t>] [--access <level>] [--collection <id>] [--description <text>] [--tag t]... [--clear-tags] [--file path]... <id>"
}

func (recordEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags("record-edit")
	var rf recordFlags
	rf.register(fs)
	fs.BoolVar(&rf.clearTags, "clear-tags", false, "удалить все теги записи")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return ErrUsage
	}
	in, closeFiles, err := rf.input()
	if err != nil {
		return err
	}
	defer closeFiles()

	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := requireSession(root); err != nil {
		return err
	}

	rec, err := root.Records.Update(ctx, fs.Arg(0), in)
	if err != nil {
		return report(err, root.Records.Store().Err(), "Failed to update record")
	}
	fmt.Fprintf(Out, "Updated record %s (%s), files: %d\n", rec.Title, rec.ID, len(rec.FileAssets))
	return nil
}

type recordRmCmd struct{}

func (recordRmCmd) Name() string        { return "record-rm" }
func (recordRmCmd) Description() string { return "Удалить запись" }
func (recordRmCmd) Usage() string       { return "record-rm <id>" }

func (recordRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := requireSession(root); err != nil {
		return err
	}
	if err := root.Records.Delete(ctx, args[0]); err != nil {
		return report(err, root.Records.Store().Err(), "Failed to delete record")
	}
	fmt.Fprintf(Out, "Deleted record %s\n", args[0])
	return nil
}

func init() {
	RegisterCmd(recordsCmd{})
	RegisterCmd(recordCmd{})
	RegisterCmd(recordAddCmd{})
	RegisterCmd(recordEditCmd{})
	RegisterCmd(recordRmCmd{})
}
