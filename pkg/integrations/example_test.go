package integrations_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/matzehuels/crateup/pkg/integrations"
)

func ExampleClient_Get() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"agent":%q}`, r.Header.Get("User-Agent"))
	}))
	defer server.Close()

	client := integrations.NewClient(map[string]string{"User-Agent": "crateup/dev"})

	var resp struct {
		Agent string `json:"agent"`
	}
	if err := client.Get(context.Background(), server.URL, nil, &resp); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(resp.Agent)
	// Output:
	// crateup/dev
}
