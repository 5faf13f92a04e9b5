package lark

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMessageCreator struct {
	createFunc func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error)
	requests   []*larkIm.CreateMessageReq
}

func (m *mockMessageCreator) Create(ctx context.Context, req *larkIm.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkIm.CreateMessageResp, error) {
	m.requests = append(m.requests, req)
	return m.createFunc(ctx, req)
}

func okResponse() *larkIm.CreateMessageResp {
	return &larkIm.CreateMessageResp{
		Data: &larkIm.CreateMessageRespData{MessageId: larkcore.StringPtr("om_123")},
	}
}

func TestMessenger_SendText(t *testing.T) {
	t.Run("one create call per message", func(t *testing.T) {
		creator := &mockMessageCreator{createFunc: func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error) {
			return okResponse(), nil
		}}
		m := &Messenger{messages: creator, logger: zap.NewNop()}

		require.NoError(t, m.SendText(context.Background(), "ops@example.org", "hello"))
		require.Len(t, creator.requests, 1)
		assert.NotNil(t, creator.requests[0])
	})

	t.Run("api failure", func(t *testing.T) {
		creator := &mockMessageCreator{createFunc: func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error) {
			resp := okResponse()
			resp.Code = 230001
			resp.Msg = "no permission"
			return resp, nil
		}}
		m := &Messenger{messages: creator, logger: zap.NewNop()}

		err := m.SendText(context.Background(), "ops@example.org", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "230001")
	})

	t.Run("transport failure", func(t *testing.T) {
		creator := &mockMessageCreator{createFunc: func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error) {
			return nil, errors.New("timeout")
		}}
		m := &Messenger{messages: creator, logger: zap.NewNop()}

		assert.Error(t, m.SendText(context.Background(), "ops@example.org", "hello"))
	})

	t.Run("validates input", func(t *testing.T) {
		m := &Messenger{messages: &mockMessageCreator{}, logger: zap.NewNop()}
		assert.Error(t, m.SendText(context.Background(), "", "hello"))
		assert.Error(t, m.SendText(context.Background(), "ops@example.org", ""))
	})
}

func TestTextMessageBody(t *testing.T) {
	body, err := textMessageBody("ops@example.org", "line one\n\"quoted\"")
	require.NoError(t, err)

	require.NotNil(t, body.ReceiveId)
	require.NotNil(t, body.MsgType)
	require.NotNil(t, body.Content)
	assert.Equal(t, "ops@example.org", *body.ReceiveId)
	assert.Equal(t, msgTypeText, *body.MsgType)

	var content map[string]string
	require.NoError(t, json.Unmarshal([]byte(*body.Content), &content))
	assert.Equal(t, "line one\n\"quoted\"", content["text"])
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(zap.NewNop()).SendText(context.Background(), "ops@example.org", "hello"))
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{AppID: "cli_x"}.Enabled())
	assert.True(t, Config{AppID: "cli_x", AppSecret: "secret"}.Enabled())
}
