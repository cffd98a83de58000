package handler

import (
	"errors"
	"net/http"

	"sms_campaign_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData is the JSON envelope of every /api response.
type ResponseData struct {
	Code int `json:"code"`           // business code
	Msg  any `json:"msg"`            // message, or field errors for validation failures
	Data any `json:"data,omitempty"` // payload
}

// HandleSuccess writes data with 200.
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError writes err with the HTTP status of its business code.
// Messages of storage and unexpected errors are replaced by a generic one.
//
//	if err := svc.DoSomething(ctx); err != nil {
//	    HandleError(c, err)
//	    return
//	}
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if !errors.As(err, &codeErr) {
		codeErr = errorx.Wrap(err, errorx.CodeServerBusy, errorx.ErrServerBusy.Msg)
	}
	status := errorx.HTTPStatus(codeErr.Code)
	msg := codeErr.Msg

	if status >= http.StatusInternalServerError && codeErr.Code != errorx.CodeDeliveryError {
		zap.L().Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Int("code", codeErr.Code),
			zap.Error(err),
		)
		msg = publicMessage(codeErr.Code)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ResponseData{Code: codeErr.Code, Msg: msg})
}

func publicMessage(code int) string {
	switch code {
	case errorx.CodeDBError:
		return "storage error"
	case errorx.CodeCacheError:
		return "cache error"
	default:
		return errorx.ErrServerBusy.Msg
	}
}

// HandleParamError writes a binding failure as 400, translating validator errors.
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ResponseData{
			Code: errorx.CodeInvalidParam,
			Msg:  RemoveTopStruct(validationErrs.Translate(Trans)),
		})
		return
	}

	// malformed JSON, wrong types
	zap.L().Warn("param bind error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, ResponseData{
		Code: errorx.CodeInvalidParam,
		Msg:  errorx.ErrInvalidParam.Msg,
	})
}
