package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"mealplan/internal/core"
	"mealplan/internal/grocery"
	"mealplan/internal/services"
)

const (
	ToolGroceryList       = "grocery_list"
	ToolToggleGroceryItem = "toggle_grocery_item"
	ToolListMeals         = "list_meals"
)

var (
	ErrUnknownTool   = errors.New("unknown tool")
	ErrInvalidParams = errors.New("invalid parameters")
)

// MCPAdapter exposes the meal plan as MCP tool calls so assistants can read
// the grocery list and tick items off.
type MCPAdapter struct {
	service *services.MealPlanService
	tools   map[string]func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)
}

type groceryListParams struct {
	Week string `json:"week,omitempty" description:"Any date of the week to list (YYYY-MM-DD); omit for the whole plan"`
}

type toggleParams struct {
	Key string `json:"key" description:"Stable item key, normalized name and unit joined by a dash"`
}

type listMealsParams struct {
	Week string `json:"week,omitempty" description:"Any date of the week to list (YYYY-MM-DD)"`
}

func NewMCPAdapter(service *services.MealPlanService) *MCPAdapter {
	a := &MCPAdapter{service: service}
	a.tools = map[string]func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error){
		ToolGroceryList:       a.handleGroceryList,
		ToolToggleGroceryItem: a.handleToggle,
		ToolListMeals:         a.handleListMeals,
	}
	return a
}

// ToolNames lists the tools Call accepts.
func (a *MCPAdapter) ToolNames() []string {
	return []string{ToolGroceryList, ToolToggleGroceryItem, ToolListMeals}
}

// Call routes req to its tool. Unknown tool names wrap ErrUnknownTool and
// undecodable arguments wrap ErrInvalidParams.
func (a *MCPAdapter) Call(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	handler, ok := a.tools[req.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, req.Name)
	}
	return handler(ctx, req)
}

func (a *MCPAdapter) handleGroceryList(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params groceryListParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	var (
		list services.GroceryList
		err  error
	)
	if week := strings.TrimSpace(params.Week); week != "" {
		ref, perr := core.ParseISODate(week)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, perr)
		}
		list, err = a.service.GroceryListForWeek(ctx, ref)
	} else {
		list, err = a.service.GroceryList(ctx)
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(grocery.NewListView(list.Revision, list.Items))
}

func (a *MCPAdapter) handleToggle(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params toggleParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Key) == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidParams)
	}

	item, err := a.service.ToggleGroceryItem(ctx, params.Key)
	if err != nil {
		return nil, err
	}
	return jsonResult(grocery.NewItemView(item))
}

func (a *MCPAdapter) handleListMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params listMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	var (
		meals []core.Meal
		err   error
	)
	if week := strings.TrimSpace(params.Week); week != "" {
		ref, perr := core.ParseISODate(week)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, perr)
		}
		meals, err = a.service.ListMealsForWeek(ctx, ref)
	} else {
		meals, err = a.service.ListMeals(ctx)
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"meals": meals})
}

// extractParams converts the request arguments into target.
func extractParams(req *protocol.CallToolRequest, target any) error {
	if len(req.Arguments) == 0 {
		return nil
	}
	b, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func jsonResult(data any) (*protocol.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{Type: "text", Text: string(b)},
		},
	}, nil
}
