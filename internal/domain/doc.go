// Package domain contains the core business entities of the task service:
// users and the tasks they own, with their validation rules. It has no
// dependencies on storage or transport.
package domain
