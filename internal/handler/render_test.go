package handler_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/todolist/internal/form"
	"github.com/sakif/todolist/internal/handler"
	"github.com/sakif/todolist/internal/model"
)

const templateDir = "../../web/templates"

// Every page must execute against realistic data, signed in and out.
func TestTemplateRenderer_AllPages(t *testing.T) {
	r, err := handler.NewTemplateRenderer(templateDir)
	require.NoError(t, err)

	three := 3
	alice := &model.User{ID: 1, Email: "a@x.com", Name: "Alice"}
	groceries := &model.List{ID: 7, AuthorID: 1, Name: "Home/Groceries", TotalTasks: &three}
	tasks := []model.Task{
		{ID: 1, ListID: 7, Title: "Eggs", Description: "a dozen", ImageURL: "https://example.com/egg.png"},
		{ID: 2, ListID: 7, Title: "Milk"},
	}

	tests := []struct {
		page string
		data *handler.Page
		want []string
	}{
		{handler.PageRegister, &handler.Page{Title: "Register", Form: form.Register{}, Errors: form.Errors{"email": "This field is required."}},
			[]string{`action="/register"`, "This field is required."}},
		{handler.PageLogin, &handler.Page{Title: "Log In", Flashes: []string{"That email is not registered."}},
			[]string{`action="/"`, "That email is not registered."}},
		{handler.PageHome, &handler.Page{Title: "My Lists", User: alice, AllLists: []model.List{*groceries}},
			[]string{"Hello, Alice", `href="/7"`, `href="/Home%2FGroceries/7"`, "/delete_list/7", "gravatar.com",
				`data-list-id="7" data-total="3"`}},
		{handler.PageHome, &handler.Page{Title: "My Lists", User: alice},
			[]string{"no lists yet"}},
		{handler.PageNewList, &handler.Page{Title: "New List", User: alice, Errors: form.Errors{"list": "This field is required."}},
			[]string{`action="/new_list"`, "This field is required."}},
		{handler.PageNewTask, &handler.Page{Title: "New Task", User: alice, List: groceries},
			[]string{"New Task for Home/Groceries", `name="img"`}},
		{handler.PageShowList, &handler.Page{Title: "Groceries", User: alice, List: groceries, Tasks: tasks, LenTasks: 2},
			[]string{"2 tasks", "Eggs", "a dozen", "https://example.com/egg.png", "/delete_task/2",
				`data-task-id="1"`, `class="list-progress" data-list-id="7"`, "/static/js/progress.js"}},
		{handler.PageNotFound, &handler.Page{Title: "Not Found"},
			[]string{"Not Found"}},
	}

	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, tt.page, tt.data))

			html := buf.String()
			for _, want := range tt.want {
				assert.Contains(t, html, want)
			}
		})
	}
}

func TestTemplateRenderer_EscapesUserInput(t *testing.T) {
	r, err := handler.NewTemplateRenderer(templateDir)
	require.NoError(t, err)

	list := &model.List{ID: 1, Name: "<script>alert(1)</script>"}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, handler.PageShowList, &handler.Page{List: list}))

	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

// A list name must never turn the add-task link into another route.
func TestTemplateRenderer_AddTaskLinkForReservedNames(t *testing.T) {
	r, err := handler.NewTemplateRenderer(templateDir)
	require.NoError(t, err)

	tests := []struct {
		name string
		want string
	}{
		{".", `href="/list/4"`},
		{"..", `href="/list/4"`},
		{"static", `href="/list/4"`},
		{"delete_task", `href="/list/4"`},
		{"delete_list", `href="/list/4"`},
		{"Static", `href="/Static/4"`},
		{"a.b", `href="/a.b/4"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := &model.List{ID: 4, AuthorID: 1, Name: tt.name}
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, handler.PageShowList, &handler.Page{List: list}))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestTemplateRenderer_Errors(t *testing.T) {
	_, err := handler.NewTemplateRenderer("no/such/dir")
	assert.Error(t, err)

	r, err := handler.NewTemplateRenderer(templateDir)
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "missing-page", &handler.Page{}))
}
