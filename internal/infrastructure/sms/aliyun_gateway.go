package sms

import (
	"context"
	"encoding/json"
	"fmt"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi20170525 "github.com/alibabacloud-go/dysmsapi-20170525/v4/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	"go.uber.org/zap"

	"sms_campaign_server/internal/config"
	"sms_campaign_server/pkg/errorx"
)

const (
	aliyunName     = "aliyun"
	aliyunEndpoint = "dysmsapi.aliyuncs.com"
	aliyunOK       = "OK"
)

// aliyunSender is the SDK call used by the gateway.
type aliyunSender interface {
	SendSmsWithOptions(request *dysmsapi20170525.SendSmsRequest, runtime *util.RuntimeOptions) (*dysmsapi20170525.SendSmsResponse, error)
}

// aliyunGateway sends through Alibaba Cloud SMS. The body is rendered into
// the configured template variable; BizId is the provider message id.
type aliyunGateway struct {
	client        aliyunSender
	signName      string
	templateCode  string
	templateParam string
}

func newAliyunGateway(cfg *config.SmsConfig) (*aliyunGateway, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = aliyunEndpoint
	}
	conf := &openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
		Endpoint:        tea.String(endpoint),
	}
	client, err := dysmsapi20170525.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("init aliyun sms client: %w", err)
	}
	return newAliyunGatewayWithClient(client, cfg), nil
}

func newAliyunGatewayWithClient(client aliyunSender, cfg *config.SmsConfig) *aliyunGateway {
	param := cfg.TemplateParam
	if param == "" {
		param = "content"
	}
	return &aliyunGateway{
		client:        client,
		signName:      cfg.SignName,
		templateCode:  cfg.TemplateCode,
		templateParam: param,
	}
}

func (g *aliyunGateway) Name() string { return aliyunName }

func (g *aliyunGateway) Send(ctx context.Context, from, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errorx.Wrapf(err, errorx.CodeDeliveryError, "send to %s cancelled", to)
	}

	param, err := json.Marshal(map[string]string{g.templateParam: body})
	if err != nil {
		return "", errorx.Wrap(err, errorx.CodeDeliveryError, "encode template param")
	}
	req := &dysmsapi20170525.SendSmsRequest{
		SignName:      tea.String(g.signName),
		TemplateCode:  tea.String(g.templateCode),
		PhoneNumbers:  tea.String(to),
		TemplateParam: tea.String(string(param)),
	}

	resp, err := g.client.SendSmsWithOptions(req, &util.RuntimeOptions{
		ConnectTimeout: tea.Int(5000),
		ReadTimeout:    tea.Int(10000),
	})
	if err != nil {
		zap.L().Error("aliyun sms request failed", zap.String("to", to), zap.Error(err))
		return "", errorx.Wrapf(err, errorx.CodeDeliveryError, "aliyun send to %s", to)
	}
	if resp == nil || resp.Body == nil {
		return "", errorx.Newf(errorx.CodeDeliveryError, "aliyun send to %s: empty response", to)
	}

	code := tea.StringValue(resp.Body.Code)
	if code != aliyunOK {
		zap.L().Warn("aliyun sms rejected",
			zap.String("to", to),
			zap.String("code", code),
			zap.String("message", tea.StringValue(resp.Body.Message)),
			zap.String("requestID", tea.StringValue(resp.Body.RequestId)))
		return "", errorx.Newf(errorx.CodeDeliveryError, "aliyun rejected %s: %s %s", to, code, tea.StringValue(resp.Body.Message))
	}

	bizID := tea.StringValue(resp.Body.BizId)
	zap.L().Debug("aliyun sms accepted", zap.String("from", from), zap.String("to", to), zap.String("bizID", bizID))
	return bizID, nil
}
