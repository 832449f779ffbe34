/*
Package authsdk holds the wire types of the CRM auth API and a small client
for it.

	client := authsdk.NewClient("http://localhost:8080")

	reg, err := client.Register(ctx, authsdk.RegisterRequest{
		CompanyName: "Stone & Sod",
		Username:    "owner",
		Password:    "correct horse",
	})

	err = client.Invite(ctx, reg.Token, authsdk.InviteRequest{
		Email: "crew@example.com",
		Role:  "user",
	})

Every non-2xx response is returned as an *APIError carrying the status code
and the server's message.
*/
package authsdk
