// Package repository handles all interactions with the database.
//
// It contains the MongoDB queries used to fetch, persist,
// or update data, abstracting driver types away from the service layer.
package repository
