// Package shopassist is a Go client for the shopassist HTTP API.
//
//	client, _ := shopassist.New("http://localhost:8080",
//	    shopassist.WithAPIKey(os.Getenv("SHOPASSIST_API_KEY")),
//	)
//	ans, err := client.Ask(ctx, "近くに包丁を売っている店はありますか？",
//	    &shopassist.Location{Lat: 33.5617, Lng: 133.5356})
//	if err != nil {
//	    var apiErr *shopassist.APIError
//	    if errors.As(err, &apiErr) {
//	        fmt.Println(apiErr.Reply) // still human-displayable
//	    }
//	}
//	fmt.Println(ans.Reply, ans.ShopIDs)
package shopassist
