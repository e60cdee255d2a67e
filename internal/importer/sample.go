package importer

// SampleCSV returns a two-day example plan in the import format.
func SampleCSV() string {
	return sampleCSV
}

const sampleCSV = `meal_name,day,meal_type,ingredient,quantity,unit,category
Scrambled Eggs,Monday,Breakfast,Eggs,3,pcs,Dairy & Eggs
Scrambled Eggs,Monday,Breakfast,Butter,1,tbsp,Dairy & Eggs
Scrambled Eggs,Monday,Breakfast,Salt,0.25,tsp,Spices
Scrambled Eggs,Monday,Breakfast,Black Pepper,0.25,tsp,Spices
Toast with Avocado,Monday,Breakfast,Bread,2,slices,Bakery
Toast with Avocado,Monday,Breakfast,Avocado,1,pcs,Produce
Grilled Chicken Salad,Monday,Lunch,Chicken Breast,6,oz,Meat
Grilled Chicken Salad,Monday,Lunch,Mixed Greens,3,cups,Produce
Grilled Chicken Salad,Monday,Lunch,Cherry Tomatoes,0.5,cup,Produce
Grilled Chicken Salad,Monday,Lunch,Olive Oil,2,tbsp,Pantry
Grilled Chicken Salad,Monday,Lunch,Lemon,1,pcs,Produce
Pasta Primavera,Monday,Dinner,Pasta,8,oz,Pantry
Pasta Primavera,Monday,Dinner,Bell Peppers,2,pcs,Produce
Pasta Primavera,Monday,Dinner,Zucchini,1,pcs,Produce
Pasta Primavera,Monday,Dinner,Garlic,3,cloves,Produce
Pasta Primavera,Monday,Dinner,Parmesan Cheese,0.5,cup,Dairy & Eggs
Oatmeal with Berries,Tuesday,Breakfast,Oats,1,cup,Pantry
Oatmeal with Berries,Tuesday,Breakfast,Milk,1,cup,Dairy & Eggs
Oatmeal with Berries,Tuesday,Breakfast,Blueberries,0.5,cup,Produce
Oatmeal with Berries,Tuesday,Breakfast,Honey,1,tbsp,Pantry
Turkey Sandwich,Tuesday,Lunch,Turkey Breast,4,oz,Meat
Turkey Sandwich,Tuesday,Lunch,Bread,2,slices,Bakery
Turkey Sandwich,Tuesday,Lunch,Lettuce,2,leaves,Produce
Turkey Sandwich,Tuesday,Lunch,Tomato,2,slices,Produce
Turkey Sandwich,Tuesday,Lunch,Mayonnaise,1,tbsp,Pantry
Salmon with Rice,Tuesday,Dinner,Salmon Fillet,6,oz,Seafood
Salmon with Rice,Tuesday,Dinner,Brown Rice,1,cup,Pantry
Salmon with Rice,Tuesday,Dinner,Broccoli,2,cups,Produce
Salmon with Rice,Tuesday,Dinner,Soy Sauce,2,tbsp,Pantry
Salmon with Rice,Tuesday,Dinner,Ginger,1,tsp,Spices
`
