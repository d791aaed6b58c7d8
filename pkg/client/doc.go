// Package client runs predictions on Replicate models.
//
// # Quick Start
//
//	c, err := client.NewReplicateClient(config.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	model, err := c.GetModel(ctx, "stability-ai/sdxl", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	output, err := model.Predict(ctx, map[string]interface{}{"prompt": "a cat"})
//
// # Streaming
//
// Stream returns a snapshot per status check, including the terminal one:
//
//	s := model.Stream(input)
//	for {
//	    snap, err := s.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(snap.Status, snap.Output)
//	}
//
// # Configuration
//
// When config.Config carries no token, it is read once from
// REPLICATE_API_TOKEN. A proxy URL may stand in for the token. Predictions
// are polled every 5 seconds unless PollingIntervalMS says otherwise, and run
// for as long as ctx allows.
package client
