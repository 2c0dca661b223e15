// Package probe checks the reachability of an IPv4 host with a fixed burst of
// ICMP Echo Requests.
//
// Every frame carries the next value of a 16 bit sequence counter. A reply is
// accepted only when its sequence number belongs to the frames sent so far in
// the current run, its latency is stored in the ledger slot of that frame, and
// frames are spaced by a minimum interval. The run ends with an error rate
// verdict and an average latency.
//
//	t, err := probe.ListenRaw("0.0.0.0")
//	if err != nil {
//	    logrus.Fatal(err)
//	}
//	s, err := probe.NewSession(t)
//	if err != nil {
//	    logrus.Fatal(err)
//	}
//	defer s.Close()
//
//	res, err := s.Run(context.Background(), "10.0.0.3")
//	if err != nil {
//	    logrus.Fatal(err)
//	}
//	fmt.Println(res)
package probe
