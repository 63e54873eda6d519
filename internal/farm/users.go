package farm

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"
)

// User is a flattened farmOS user account, mainly used to look up owner
// UUIDs for logs and plans.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// UserList is the result of a user listing query.
type UserList struct {
	Total    int    `json:"total,omitempty"`
	Returned int    `json:"returned"`
	Users    []User `json:"users"`
}

func normalizeUser(res gjson.Result) User {
	attrs := res.Get("attributes")

	name := attrs.Get("name").Str
	if name == "" {
		name = attrs.Get("display_name").Str
	}

	user := User{
		ID:   res.Get("id").Str,
		Name: name,
	}

	for _, r := range attrs.Get("roles").Array() {
		user.Roles = append(user.Roles, r.String())
	}

	return user
}

// Users lists farmOS user accounts sorted by name.
func (s *Service) Users(ctx context.Context, name string, limit, offset int) (*UserList, error) {
	q := url.Values{}
	q.Set("sort", "name")

	if name != "" {
		q.Set("filter[name]", name)
	}

	pageParams(q, clampLimit(limit, 50), offset)

	doc, err := s.client.Get(ctx, "user/user", q)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(doc)

	var users []User
	for _, r := range parsed.Get("data").Array() {
		users = append(users, normalizeUser(r))
	}

	total := len(users)
	if c := parsed.Get("meta.count"); c.Exists() {
		total = int(c.Int())
	}

	return &UserList{Total: total, Returned: len(users), Users: users}, nil
}
