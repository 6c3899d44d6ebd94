package activity

import (
	"github.com/PuerkitoBio/goquery"
)

// Built-in activity names. Pages referencing these never need a book-supplied
// script.
const (
	SimpleCheckboxesName = "simple-checkboxes"
)

const (
	checkboxClass = "checkbox"
	checkedClass  = "checked"
)

func registerBuiltins(modules map[string]Module) {
	modules[SimpleCheckboxesName] = checkboxesModule{}
}

// checkboxesModule builds the bundled checkbox activity: the reader ticks
// every checkbox on the page and the activity reports a full score once all
// are checked.
type checkboxesModule struct{}

func (checkboxesModule) Requirements() Requirements {
	return Requirements{Clicking: true}
}

func (checkboxesModule) New() Activity {
	return &checkboxes{}
}

type checkboxes struct {
	ctx   *Context
	total int
}

func (a *checkboxes) Start(ctx *Context) error {
	a.ctx = ctx
	a.total = ctx.Page().Root.Find("." + checkboxClass).Length()

	ctx.AddEventListener("click", a.onClick)
	return nil
}

func (a *checkboxes) onClick(ev Event) {
	if ev.Target == nil {
		return
	}

	box := ev.Target.Closest("." + checkboxClass)
	if box.Length() == 0 {
		return
	}

	if box.HasClass(checkedClass) {
		box.RemoveClass(checkedClass)
	} else {
		box.AddClass(checkedClass)
	}

	if a.done() {
		a.ctx.ReportScore(a.total, a.total)
	}
}

func (a *checkboxes) done() bool {
	if a.total == 0 {
		return false
	}
	checked := 0
	a.ctx.Page().Root.Find("." + checkboxClass).Each(func(_ int, box *goquery.Selection) {
		if box.HasClass(checkedClass) {
			checked++
		}
	})
	return checked == a.total
}

func (a *checkboxes) Stop() {}
