package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ArchiveDesk/internal/cli/service"
	"ArchiveDesk/internal/cli/state"
	"ArchiveDesk/internal/config"
	"ArchiveDesk/internal/model"
)

// publicationLine — строка списка новостей, событий или объявлений.
type publicationLine struct {
	pub    model.Publication
	detail string
}

// publications — общий интерфейс трёх типизированных ресурсов управления для CLI.
type publications struct {
	noun      string
	storeErr  func() string
	list      func(ctx context.Context) ([]publicationLine, error)
	create    func(ctx context.Context, in model.PublicationInput) (model.Publication, error)
	publish   func(ctx context.Context, id string) (model.Publication, error)
	unpublish func(ctx context.Context, id string) (model.Publication, error)
	remove    func(ctx context.Context, id string) error
}

func adapt[T model.Entity](p *service.Publications[T], noun string, head func(T) model.Publication, detail func(T) string) publications {
	line := func(v T, err error) (model.Publication, error) { return head(v), err }
	return publications{
		noun:     noun,
		storeErr: p.Store().Err,
		list: func(ctx context.Context) ([]publicationLine, error) {
			if err := p.FetchList(ctx, nil); err != nil {
				return nil, err
			}
			items := p.Store().Items()
			out := make([]publicationLine, 0, len(items))
			for _, v := range items {
				out = append(out, publicationLine{pub: head(v), detail: detail(v)})
			}
			return out, nil
		},
		create: func(ctx context.Context, in model.PublicationInput) (model.Publication, error) {
			return line(p.Create(ctx, in))
		},
		publish: func(ctx context.Context, id string) (model.Publication, error) {
			return line(p.Publish(ctx, id))
		},
		unpublish: func(ctx context.Context, id string) (model.Publication, error) {
			return line(p.Unpublish(ctx, id))
		},
		remove: p.Delete,
	}
}

// governance выбирает ресурс по виду: news, events или notices.
func governance(root *state.Root, kind string) (publications, bool) {
	switch strings.ToLower(kind) {
	case "news":
		return adapt(root.News, "news item", func(n model.News) model.Publication { return n.Publication },
			func(n model.News) string { return fmt.Sprintf("files=%d", len(n.Files)) }), true
	case "event", "events":
		return adapt(root.Events, "event", func(e model.Event) model.Publication { return e.Publication },
			func(e model.Event) string {
				return fmt.Sprintf("%s → %s  %s", formatTime(e.StartsAt), formatTime(e.EndsAt), orDash(e.Location))
			}), true
	case "notice", "notices":
		return adapt(root.Notices, "notice", func(n model.Notice) model.Publication { return n.Publication },
			func(n model.Notice) string {
				if n.Expired(time.Now()) {
					return "expired"
				}
				return "expires " + formatTime(n.ExpiresAt)
			}), true
	}
	return publications{}, false
}

// governanceListCmd — список одного вида: news, events, notices.
type governanceListCmd struct {
	kind string
	desc string
}

func (c governanceListCmd) Name() string        { return c.kind }
func (c governanceListCmd) Description() string { return c.desc }
func (c governanceListCmd) Usage() string       { return c.kind + " [--published]" }

func (c governanceListCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlags(c.kind)
	onlyPublished := fs.Bool("published", false, "только опубликованные")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()

	p, _ := governance(root, c.kind)
	lines, err := p.list(ctx)
	if err != nil {
		return report(err, p.storeErr(), "Failed to fetch "+c.kind)
	}
	shown := 0
	for _, l := range lines {
		if *onlyPublished && l.pub.Status != model.StatusPublished {
			continue
		}
		shown++
		fmt.Fprintf(Out, "- %s  %s  [%s]  published=%s  %s\n", l.pub.ID, l.pub.Title, l.pub.Status, formatTime(l.pub.PublishedAt), l.detail)
	}
	if shown == 0 {
		fmt.Fprintln(Out, "Пусто")
		return nil
	}
	fmt.Fprintf(Out, "Всего: %d\n", shown)
	return nil
}

type govAddCmd struct{}

func (govAddCmd) Name() string { return "gov-add" }
func (govAddCmd) Description() string {
	return "Создать новость, событие или объявление"
}
func (govAddCmd) Usage() string {
	return "gov-add <news|event|notice> --title <t> [--body <text>] [--description <text>] [--location <l>] [--starts <time>] [--ends <time>] [--expires <time>] [--publish]"
}

func (govAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	kind := args[0]
	fs := newFlags("gov-add")
	var title, body, desc, location optString
	var starts, ends, expires optTime
	fs.Var(&title, "title", "заголовок")
	fs.Var(&body, "body", "текст")
	fs.Var(&desc, "description", "описание события")
	fs.Var(&location, "location", "место события")
	fs.Var(&starts, "starts", "начало события")
	fs.Var(&ends, "ends", "окончание события")
	fs.Var(&expires, "expires", "срок действия объявления")
	publish := fs.Bool("publish", false, "сразу опубликовать")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return ErrUsage
	}

	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()
	p, ok := governance(root, kind)
	if !ok {
		return ErrUsage
	}
	if err := requireSession(root); err != nil {
		return err
	}

	in := model.PublicationInput{
		Title:       title.ptr(),
		Body:        body.ptr(),
		Description: desc.ptr(),
		Location:    location.ptr(),
		StartsAt:    starts.value,
		EndsAt:      ends.value,
		ExpiresAt:   expires.value,
	}
	if *publish {
		st := model.StatusPublished
		in.Status = &st
	}
	pub, err := p.create(ctx, in)
	if err != nil {
		return report(err, p.storeErr(), "Failed to create "+p.noun)
	}
	fmt.Fprintf(Out, "Created %s %s (%s) [%s]\n", p.noun, pub.Title, pub.ID, pub.Status)
	return nil
}

// govIDCmd — команды вида «<kind> <id>»: gov-rm, publish, unpublish.
type govIDCmd struct {
	name, desc string
	run        func(ctx context.Context, p publications, id string) (string, error)
}

func (c govIDCmd) Name() string        { return c.name }
func (c govIDCmd) Description() string { return c.desc }
func (c govIDCmd) Usage() string       { return c.name + " <news|event|notice> <id>" }

func (c govIDCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	root, done, err := openState(cfg)
	if err != nil {
		return err
	}
	defer done()
	p, ok := governance(root, args[0])
	if !ok {
		return ErrUsage
	}
	if err := requireSession(root); err != nil {
		return err
	}
	msg, err := c.run(ctx, p, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, msg)
	return nil
}

func init() {
	RegisterCmd(governanceListCmd{kind: "news", desc: "Новости"})
	RegisterCmd(governanceListCmd{kind: "events", desc: "События"})
	RegisterCmd(governanceListCmd{kind: "notices", desc: "Объявления"})
	RegisterCmd(govAddCmd{})
	RegisterCmd(govIDCmd{name: "gov-rm", desc: "Удалить новость, событие или объявление",
		run: func(ctx context.Context, p publications, id string) (string, error) {
			if err := p.remove(ctx, id); err != nil {
				return "", report(err, p.storeErr(), "Failed to delete "+p.noun)
			}
			return "Deleted " + p.noun + " " + id, nil
		}})
	RegisterCmd(govIDCmd{name: "publish", desc: "Опубликовать",
		run: func(ctx context.Context, p publications, id string) (string, error) {
			pub, err := p.publish(ctx, id)
			if err != nil {
				return "", report(err, p.storeErr(), "Failed to update "+p.noun)
			}
			return fmt.Sprintf("Published %s %s at %s", p.noun, pub.Title, formatTime(pub.PublishedAt)), nil
		}})
	RegisterCmd(govIDCmd{name: "unpublish", desc: "Вернуть в черновик",
		run: func(ctx context.Context, p publications, id string) (string, error) {
			pub, err := p.unpublish(ctx, id)
			if err != nil {
				return "", report(err, p.storeErr(), "Failed to update "+p.noun)
			}
			return fmt.Sprintf("Unpublished %s %s", p.noun, pub.Title), nil
		}})
}
