// Command openshelf-demo walks the lending workflow end to end against an
// in-memory library and prints the resulting state report.
package main

import (
	"context"
	"fmt"

	"openshelf/internal/app"
)

func main() {
	a := app.New(app.Config{
		LibraryName:     "Central Library",
		LibraryLocation: "University Ave 3000",
	})

	a.RegisterEmployee("Juan Pérez", "E001", 16000, "Librarian")
	a.RegisterEmployee("María García", "E002", 8000, "Assistant")

	a.RegisterPatron("Ana López", "U001")
	a.RegisterPatron("Carlos Ruiz", "U002")

	for _, b := range []struct {
		title, author, isbn string
		pages               int
	}{
		{"Don Quijote de la Mancha", "Miguel de Cervantes", "9788424922498", 863},
		{"Cien años de soledad", "Gabriel García Márquez", "9780307474728", 417},
		{"El Principito", "Antoine de Saint-Exupéry", "9788498381498", 96},
		{"1984", "George Orwell", "9788499890944", 326},
		{"Orgullo y Prejuicio", "Jane Austen", "9788491052050", 424},
		{"La Odisea", "Homero", "9788467028621", 448},
		{"Fahrenheit 451", "Ray Bradbury", "9788445073192", 192},
		{"La Metamorfosis", "Franz Kafka", "9788420651361", 128},
		{"Moby Dick", "Herman Melville", "9788491051322", 752},
	} {
		a.RegisterBook(b.title, b.author, b.isbn, b.pages)
	}

	fmt.Println("Search for \"don\":")
	for _, v := range a.Search("don") {
		fmt.Printf("- %s by %s (%s)\n", v.Title, v.Author, v.ISBN)
	}
	fmt.Println()

	ctx := context.Background()
	for _, isbn := range []string{"9788498381498", "9788445073192"} {
		if rec, ok := a.Lend(ctx, isbn, "U001", "E001"); ok {
			fmt.Printf("Loan %s: %s due %s\n", rec.LoanID, rec.Title, rec.DueAt.Format("2006-01-02"))
		} else {
			fmt.Printf("Loan refused for %s\n", isbn)
		}
	}
	fmt.Println()

	fmt.Println("Currently on loan:")
	for _, v := range a.Catalog() {
		if !v.Available {
			fmt.Printf("- %s\n", v.Title)
		}
	}
	fmt.Println()

	if rec, ok := a.Return(ctx, "9788498381498", "E001"); ok {
		fmt.Printf("Returned %s (%s)\n", rec.Title, rec.LoanID)
	} else {
		fmt.Println("Return refused")
	}
	fmt.Println()

	fmt.Print(a.Summary())
}
