package server

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/domain/shared"
	mcperrors "github.com/FreePeak/openapi-mcp-server/internal/domain/shared/errors"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

type methodHandler func(ctx context.Context, session *Session, req *shared.JSONRPCRequest) (interface{}, error)

// rpcError is a handler failure that maps to a fixed JSON-RPC code and message.
type rpcError struct {
	code    shared.ErrorCode
	message string
}

func (e *rpcError) Error() string {
	return e.message
}

func invalidParams(format string, args ...interface{}) error {
	return &rpcError{code: shared.InvalidParams, message: fmt.Sprintf(format, args...)}
}

// processRequest runs the initialization gate and dispatches req. It never
// panics: a panicking handler yields an Internal Error response.
func (h *TransportHandler) processRequest(ctx context.Context, session *Session, req *shared.JSONRPCRequest) (resp *shared.JSONRPCResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(ctx).Error("Recovered from panic in method handler", logging.Fields{
				"method": req.Method,
				"panic":  fmt.Sprint(rec),
				"stack":  string(debug.Stack()),
			})
			resp = shared.NewErrorResponse(req.ID, shared.InternalError, fmt.Sprintf("Internal error: %v", rec), nil)
		}
	}()

	if req.Method != shared.MethodInitialize && !session.Initialized() {
		return shared.NewErrorResponse(req.ID, shared.InvalidRequest, "Session not initialized", nil)
	}

	handler, ok := h.methods[req.Method]
	if !ok {
		return shared.NewErrorResponse(req.ID, shared.MethodNotFound, "Method not found: "+req.Method, nil)
	}

	result, err := handler(ctx, session, req)
	if err != nil {
		return errorResponse(req.ID, err)
	}
	return shared.NewResponse(req.ID, result)
}

// errorResponse classifies err into a JSON-RPC error.
func errorResponse(id interface{}, err error) *shared.JSONRPCResponse {
	var rpcErr *rpcError
	if errors.As(err, &rpcErr) {
		return shared.NewErrorResponse(id, rpcErr.code, rpcErr.message, nil)
	}
	var toolNotFound *mcperrors.ToolNotFoundError
	if errors.As(err, &toolNotFound) {
		return shared.NewErrorResponse(id, shared.InvalidParams, "Tool not found: "+toolNotFound.Name, nil)
	}

	switch mcperrors.TypeOf(err) {
	case mcperrors.ErrorTypeInvalidInput, mcperrors.ErrorTypeNotFound, mcperrors.ErrorTypeAccessDenied:
		return shared.NewErrorResponse(id, shared.InvalidParams, err.Error(), nil)
	default:
		return shared.NewErrorResponse(id, shared.InternalError, "Internal error: "+err.Error(), nil)
	}
}

func (h *TransportHandler) handleNotification(ctx context.Context, session *Session, req *shared.JSONRPCRequest) {
	switch req.Method {
	case shared.NotificationInitialized:
		session.MarkInitialized()
		logging.FromContext(ctx).Debug("Session initialized")
	default:
		logging.FromContext(ctx).Debug("Ignoring notification", logging.Fields{"method": req.Method})
	}
}

func (h *TransportHandler) handleInitialize(ctx context.Context, session *Session, req *shared.JSONRPCRequest) (interface{}, error) {
	var params shared.InitializeParams
	if err := req.DecodeParams(&params); err != nil {
		// initialize never fails; fields that did decode are kept
		logging.FromContext(ctx).Debug("Ignoring malformed initialize params", logging.Fields{"error": err})
	}

	session.Initialize(params.Capabilities)

	fields := logging.Fields{
		"protocol_version": params.ProtocolVersion,
		"client_type":      string(DetectClientType(params.ClientInfo)),
	}
	if params.ClientInfo != nil {
		fields["client"] = params.ClientInfo.Name
		fields["client_version"] = params.ClientInfo.Version
	}
	logging.FromContext(ctx).Info("Session initialized", fields)

	return shared.InitializeResult{
		ProtocolVersion: shared.ProtocolVersion,
		Capabilities:    shared.DefaultCapabilities(),
		ServerInfo:      h.serverInfo,
	}, nil
}

func (h *TransportHandler) handleListTools(ctx context.Context, session *Session, req *shared.JSONRPCRequest) (interface{}, error) {
	tools := h.tools.List()
	result := shared.ListToolsResult{Tools: make([]shared.Tool, 0, len(tools))}
	for _, tool := range tools {
		var schema interface{} = shared.EmptyObjectSchema()
		if s := tool.InputSchema(); s != nil {
			schema = s
		}
		result.Tools = append(result.Tools, shared.Tool{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: schema,
		})
	}
	return result, nil
}

func (h *TransportHandler) handleCallTool(ctx context.Context, session *Session, req *shared.JSONRPCRequest) (interface{}, error) {
	var params shared.CallToolParams
	if err := req.DecodeParams(&params); err != nil {
		return nil, invalidParams("Invalid params: %v", err)
	}
	if params.Name == "" {
		return nil, invalidParams("Missing required parameter: name")
	}

	args := map[string]interface{}{}
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return nil, invalidParams("Invalid params: arguments must be an object")
		}
		if args == nil {
			args = map[string]interface{}{}
		}
	}

	if h.toolFilter != nil && !h.toolFilter.Allow(params.Name, args) {
		h.safeAccessLog(ctx, func(l domain.AccessLogger) {
			l.LogAccessDenied(params.Name, args, "Tool filtered by security policy")
		})
		return nil, invalidParams("Access denied: Tool %s is not allowed", params.Name)
	}

	tool, ok := h.tools.Find(params.Name)
	if !ok {
		return nil, &mcperrors.ToolNotFoundError{Name: params.Name}
	}

	start := time.Now()
	result, err := tool.Execute(ctx, args)
	h.record(ctx, shared.MethodCallTool+":"+params.Name, time.Since(start), err)
	h.safeAccessLog(ctx, func(l domain.AccessLogger) {
		l.LogToolCall(params.Name, args, err)
	})
	if err != nil {
		return nil, &mcperrors.ToolExecutionError{Name: params.Name, Cause: err}
	}
	if result == nil {
		result = &domain.ToolResult{}
	}

	out := shared.CallToolResult{
		Content: make([]shared.TextContent, 0, len(result.Content)),
		IsError: result.IsError,
	}
	for _, c := range result.Content {
		out.Content = append(out.Content, shared.TextContent{
			Type: c.Type,
			Text: h.mask(c.Text),
		})
	}
	return out, nil
}

func (h *TransportHandler) handleListResources(ctx context.Context, session *Session, req *shared.JSONRPCRequest) (interface{}, error) {
	infos := h.resources.List()
	result := shared.ListResourcesResult{Resources: make([]shared.Resource, 0, len(infos))}
	for _, info := range infos {
		result.Resources = append(result.Resources, shared.Resource{
			URI:         info.URI,
			Name:        info.Name,
			Description: info.Description,
			MimeType:    info.MIMEType,
		})
	}
	return result, nil
}

func (h *TransportHandler) handleReadResource(ctx context.Context, session *Session, req *shared.JSONRPCRequest) (interface{}, error) {
	var params shared.ReadResourceParams
	if err := req.DecodeParams(&params); err != nil {
		return nil, invalidParams("Invalid params: %v", err)
	}
	uri := params.URI
	if uri == "" {
		return nil, invalidParams("Missing required parameter: uri")
	}

	if h.accessPolicy != nil && !h.accessPolicy.CanAccess(uri) {
		h.safeAccessLog(ctx, func(l domain.AccessLogger) {
			l.LogResourceAccessDenied(uri, "Resource access denied by policy", session.ID())
		})
		return nil, invalidParams("Access denied to resource: %s", uri)
	}

	start := time.Now()
	contents, err := h.resources.Read(ctx, uri)
	duration := time.Since(start)
	h.record(ctx, shared.MethodReadResource, duration, err)
	h.safeAccessLog(ctx, func(l domain.AccessLogger) {
		l.LogResourceAccess(uri, session.ID(), duration, err)
	})

	if err != nil {
		switch mcperrors.TypeOf(err) {
		case mcperrors.ErrorTypeNotFound:
			return nil, invalidParams("Resource not found: %s", uri)
		case mcperrors.ErrorTypeAccessDenied:
			h.safeAccessLog(ctx, func(l domain.AccessLogger) {
				l.LogResourceAccessDenied(uri, err.Error(), session.ID())
			})
			return nil, invalidParams("Access denied to resource: %s", uri)
		case mcperrors.ErrorTypeInvalidInput:
			return nil, invalidParams("%s", err.Error())
		default:
			return nil, err
		}
	}

	mimeType := h.resources.MIMEType(uri)
	result := shared.ReadResourceResult{Contents: make([]shared.ResourceContent, 0, len(contents))}
	for _, c := range contents {
		result.Contents = append(result.Contents, shared.ResourceContent{
			URI:      uri,
			MimeType: mimeType,
			Type:     c.Type,
			Text:     h.mask(c.Text),
		})
	}
	return result, nil
}

func (h *TransportHandler) mask(text string) string {
	if h.masker == nil {
		return text
	}
	return h.masker.MaskText(text)
}

// safeAccessLog calls fn with the access logger, if any. A failing access
// logger never affects the request.
func (h *TransportHandler) safeAccessLog(ctx context.Context, fn func(domain.AccessLogger)) {
	if h.accessLogger == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(ctx).Warn("Access logger failed", logging.Fields{"panic": fmt.Sprint(rec)})
		}
	}()
	fn(h.accessLogger)
}

// record feeds the performance recorder, if any. Recorder panics are
// contained like access logger panics.
func (h *TransportHandler) record(ctx context.Context, operation string, duration time.Duration, err error) {
	if h.recorder == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(ctx).Warn("Performance recorder failed", logging.Fields{"panic": fmt.Sprint(rec)})
		}
	}()
	h.recorder.Record(operation, duration, err)
}
