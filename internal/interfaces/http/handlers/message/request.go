package message

import (
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/helpdesk-inc/helpdesk/internal/application/message/usecases"
	"github.com/helpdesk-inc/helpdesk/internal/shared/constants"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/utils"
)

// SendMessageRequest is the JSON form of a message. Uploads need multipart/form-data with
// the same field names plus repeated `files` parts.
type SendMessageRequest struct {
	Content string   `json:"content" form:"content" binding:"max=65535"`
	URLs    []string `json:"urls" form:"urls" binding:"omitempty,dive,url"`
}

type UpdateMessageRequest struct {
	Content string `json:"content" binding:"required,max=65535"`
}

// sendInput is a parsed send request. close releases the opened upload parts.
type sendInput struct {
	req   SendMessageRequest
	files []usecases.UploadedFile
	close func()
}

func parseSendRequest(c *gin.Context) (*sendInput, error) {
	in := &sendInput{close: func() {}}

	if !strings.HasPrefix(c.ContentType(), constants.ContentTypeMultipart) {
		if err := c.ShouldBindJSON(&in.req); err != nil {
			return nil, utils.ValidationError(err)
		}
		return in, nil
	}

	if err := c.ShouldBind(&in.req); err != nil {
		return nil, utils.ValidationError(err)
	}
	if len(in.req.URLs) == 0 {
		in.req.URLs = c.PostFormArray("urls[]")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.NewValidationError("Invalid multipart body", err.Error())
	}
	headers := append(form.File["files"], form.File["files[]"]...)

	opened := make([]multipart.File, 0, len(headers))
	in.close = func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			in.close()
			return nil, errors.NewValidationError("Unreadable upload", fh.Filename)
		}
		opened = append(opened, f)
		in.files = append(in.files, usecases.UploadedFile{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get(constants.HeaderContentType),
			Content:     f,
		})
	}
	return in, nil
}
