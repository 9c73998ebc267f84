package response

import "strconv"

// Status HTTP 状态码
type Status int

const (
	StatusOK                  Status = 200
	StatusCreated             Status = 201
	StatusBadRequest          Status = 400
	StatusNotFound            Status = 404
	StatusInternalServerError Status = 500
)

var statusText = map[Status]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusInternalServerError: "Internal Server Error",
}

// Text 返回状态码对应的原因短语，未知状态码返回 ""
func (s Status) Text() string {
	return statusText[s]
}

// String 返回状态行里版本号之后的部分，例如 "200 OK"
func (s Status) String() string {
	code := strconv.Itoa(int(s))
	if text := s.Text(); text != "" {
		return code + " " + text
	}
	return code
}
