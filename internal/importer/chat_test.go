package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"mealplan/internal/core"
)

const chatReply = "Here's a plan for you!\n\n📅 **Monday**\n- Tacos\n\n\n\n" +
	"```json\n" +
	`{"meals":[
	  {"name":"Tacos","day":"monday","mealType":"dinner","ingredients":[
	    {"name":"Tortilla","quantity":4,"unit":"pcs","category":"Bakery"},
	    {"name":"Beef","quantity":"1/2","unit":"lb","category":"Meat"},
	    {"name":"Salsa","category":"Condiments"},
	    {"quantity":2,"unit":"pcs"},
	    {"name":"Cheese","quantity":0,"unit":"cup","category":"Dairy & Eggs"}
	  ]},
	  {"day":"Funday","ingredients":[{"name":"Rice","quantity":"lots"}]}
	]}` +
	"\n```\nEnjoy!"

func TestParseChatResponse(t *testing.T) {
	res := ParseChatResponse(chatReply, refMonday)
	if !res.Found {
		t.Fatalf("expected JSON block to be found")
	}
	if strings.Contains(res.Message, "```") || strings.Contains(res.Message, `"meals"`) {
		t.Errorf("message still carries the JSON block: %q", res.Message)
	}
	if strings.Contains(res.Message, "\n\n\n") {
		t.Errorf("message has runs of blank lines: %q", res.Message)
	}
	if !strings.HasPrefix(res.Message, "Here's a plan") || !strings.HasSuffix(res.Message, "Enjoy!") {
		t.Errorf("unexpected message %q", res.Message)
	}

	if len(res.Meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(res.Meals))
	}
	tacos := res.Meals[0]
	if tacos.Day != core.Monday || tacos.MealType != core.Dinner || tacos.Date != "2026-02-02" {
		t.Errorf("unexpected tacos meal %+v", tacos)
	}
	if len(tacos.Ingredients) != 3 {
		t.Fatalf("expected 3 accepted ingredients, got %+v", tacos.Ingredients)
	}
	if tacos.Ingredients[1].Quantity != 0.5 {
		t.Errorf("string fraction quantity = %v", tacos.Ingredients[1].Quantity)
	}
	salsa := tacos.Ingredients[2]
	if salsa.Quantity != 1 || salsa.Unit != core.DefaultUnit || salsa.Category != core.OtherGoods {
		t.Errorf("defaults not applied to salsa: %+v", salsa)
	}

	unnamed := res.Meals[1]
	if unnamed.Name != "Unnamed Meal" || unnamed.Day != core.Monday || unnamed.MealType != core.Dinner {
		t.Errorf("meal defaults not applied: %+v", unnamed)
	}
	if len(unnamed.Ingredients) != 0 {
		t.Errorf("rice should be rejected, got %+v", unnamed.Ingredients)
	}
	if len(res.Rejected) != 3 {
		t.Fatalf("expected 3 rejected ingredients, got %v", res.Rejected)
	}
	if res.Rejected[2].Row != 2 {
		t.Errorf("rejection should point at meal 2, got %+v", res.Rejected[2])
	}
}

func TestParseChatResponseNoBlock(t *testing.T) {
	res := ParseChatResponse("What would you like to eat this week?", refMonday)
	if res.Found || len(res.Meals) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Message != "What would you like to eat this week?" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestParseChatResponseInvalidJSON(t *testing.T) {
	res := ParseChatResponse("Sure!\n```json\n{\"meals\": [\n```", refMonday)
	if res.Found || len(res.Meals) != 0 {
		t.Fatalf("broken JSON must not yield meals: %+v", res)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Field != "json" {
		t.Errorf("expected a json rejection, got %v", res.Rejected)
	}
	if res.Message != "Sure!" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestParseChatResponseUsesFirstBlock(t *testing.T) {
	text := "```json\n{\"meals\":[{\"name\":\"Old\"}]}\n```\nRevised:\n```json\n{\"meals\":[{\"name\":\"New\"}]}\n```"
	res := ParseChatResponse(text, refMonday)
	if len(res.Meals) != 1 || res.Meals[0].Name != "Old" {
		t.Fatalf("expected first block to win, got %+v", res.Meals)
	}
}

func TestCoerceIngredient(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    core.Ingredient
		wantErr error
	}{
		{"complete", `{"name":"Eggs","quantity":3,"unit":"pcs","category":"Dairy & Eggs"}`,
			core.Ingredient{Name: "Eggs", Quantity: 3, Unit: "pcs", Category: core.DairyEggs}, nil},
		{"missing quantity", `{"name":"Salt","unit":"pinch","category":"spices"}`,
			core.Ingredient{Name: "Salt", Quantity: 1, Unit: "pinch", Category: core.Spices}, nil},
		{"comma decimal", `{"name":"Milk","quantity":"0,5","unit":"l","category":"Beverages"}`,
			core.Ingredient{Name: "Milk", Quantity: 0.5, Unit: "l", Category: core.Beverages}, nil},
		{"missing name", `{"quantity":1}`, core.Ingredient{}, core.ErrEmptyName},
		{"negative", `{"name":"Oil","quantity":-1}`, core.Ingredient{}, core.ErrInvalidQuantity},
		{"zero", `{"name":"Oil","quantity":0}`, core.Ingredient{}, core.ErrInvalidQuantity},
		{"text", `{"name":"Oil","quantity":"a splash"}`, core.Ingredient{}, core.ErrInvalidQuantity},
		{"bool", `{"name":"Oil","quantity":true}`, core.Ingredient{}, core.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceIngredient(gjson.Parse(tt.json))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID == "" {
				t.Errorf("expected id")
			}
			got.ID = ""
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
