package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/domain"
)

func (c *Client) Signup(ctx context.Context, in domain.UserCreate) (*domain.User, error) {
	r, err := jsonRequest(http.MethodPost, "/users/signup", in)
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := c.do(ctx, r, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for an access token. It does not store the token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AccessToken, error) {
	form := url.Values{"username": {email}, "password": {password}}
	r := request{
		method:      http.MethodPost,
		path:        "/login/access-token",
		body:        bytes.NewReader([]byte(form.Encode())),
		contentType: "application/x-www-form-urlencoded",
	}
	var tok domain.AccessToken
	if err := c.do(ctx, r, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrUnexpectedResponse)
	}
	return &tok, nil
}

// CreateBusiness registers a business together with the caller's employee record.
func (c *Client) CreateBusiness(ctx context.Context, in domain.BusinessCreate) (*domain.Business, error) {
	r, err := jsonRequest(http.MethodPost, "/business/", in)
	if err != nil {
		return nil, err
	}
	var b domain.Business
	if err := c.do(ctx, r, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) ReadMyBusiness(ctx context.Context) (*domain.Business, error) {
	var b domain.Business
	if err := c.do(ctx, request{method: http.MethodGet, path: "/business/"}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) UpdateBusiness(ctx context.Context, id uuid.UUID, in domain.BusinessUpdate) (*domain.Business, error) {
	r, err := jsonRequest(http.MethodPut, "/business/"+id.String(), in)
	if err != nil {
		return nil, err
	}
	var b domain.Business
	if err := c.do(ctx, r, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ReadEmployeeMe is the "who am I" query.
func (c *Client) ReadEmployeeMe(ctx context.Context) (*domain.Employee, error) {
	var e domain.Employee
	if err := c.do(ctx, request{method: http.MethodGet, path: "/employee/"}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEmployee edits an employee profile. The server only accepts the
// caller's own record.
func (c *Client) UpdateEmployee(ctx context.Context, id uuid.UUID, in domain.EmployeeUpdate) (*domain.Employee, error) {
	r, err := jsonRequest(http.MethodPut, "/employee/"+id.String(), in)
	if err != nil {
		return nil, err
	}
	var e domain.Employee
	if err := c.do(ctx, r, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) ListBusinessEmployees(ctx context.Context, businessID uuid.UUID, page domain.Page) (*domain.Employees, error) {
	q := pageQuery(page)
	q.Set("business_id", businessID.String())
	var list domain.Employees
	if err := c.do(ctx, request{method: http.MethodGet, path: "/employee/business", query: q}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// InviteEmployee asks the server to email an invitation into businessID.
func (c *Client) InviteEmployee(ctx context.Context, email string, businessID uuid.UUID) (*domain.InviteIssued, error) {
	q := url.Values{"email": {email}, "business_id": {businessID.String()}}
	var issued domain.InviteIssued
	if err := c.do(ctx, request{method: http.MethodPost, path: "/employee/invite_employee/", query: q}, &issued); err != nil {
		return nil, err
	}
	return &issued, nil
}

func (c *Client) RegisterByInvitation(ctx context.Context, in domain.InviteAcceptance) (*domain.Employee, error) {
	r, err := jsonRequest(http.MethodPost, "/employee/register-by-invitation/", in)
	if err != nil {
		return nil, err
	}
	var e domain.Employee
	if err := c.do(ctx, r, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateAvatar uploads an image for the caller's employee record.
func (c *Client) UpdateAvatar(ctx context.Context, filename string, image io.Reader) (*domain.Employee, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar_file", filename)
	if err != nil {
		return nil, fmt.Errorf("create avatar part: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	r := request{
		method:      http.MethodPost,
		path:        "/employee/update_avatar/",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	var e domain.Employee
	if err := c.do(ctx, r, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// AvatarURL is where the server serves a stored avatar.
func (c *Client) AvatarURL(name string) string {
	return c.baseURL + "/employee/get_avatar/" + url.PathEscape(name)
}

func (c *Client) ListBusinessIndustries(ctx context.Context, page domain.Page) (*domain.BusinessIndustries, error) {
	var list domain.BusinessIndustries
	if err := c.do(ctx, request{method: http.MethodGet, path: "/business_industry/", query: pageQuery(page)}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) CreateBusinessIndustry(ctx context.Context, in domain.BusinessIndustryCreate) (*domain.BusinessIndustry, error) {
	r, err := jsonRequest(http.MethodPost, "/business_industry/", in)
	if err != nil {
		return nil, err
	}
	var i domain.BusinessIndustry
	if err := c.do(ctx, r, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func pageQuery(page domain.Page) url.Values {
	q := url.Values{}
	if page.Skip > 0 {
		q.Set("skip", strconv.Itoa(page.Skip))
	}
	if page.Limit > 0 {
		q.Set("limit", strconv.Itoa(page.Limit))
	}
	return q
}
